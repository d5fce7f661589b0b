package exercise

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func articleMCQ() *Exercise {
	return &Exercise{
		ID:          "test_gr_nom_genre_qcm_a1_001",
		Category:    "nom",
		Subcategory: "genre",
		Level:       LevelA1,
		Instruction: "Choisissez l'article correct",
		Sentence:    "En France, ___ commence à quinze ans.",
		Points:      10,
		TimeLimit:   30,
		Tags:        []string{"article", "genre"},
		Body: &MCQ{
			Options:       map[string]string{"a": "la lycée", "b": "le lycée", "c": "un lycée", "d": "les lycées"},
			CorrectAnswer: "b",
			Feedback:      map[string]string{"a": "masculin", "b": "correct"},
		},
	}
}

func conjugationText() *Exercise {
	return &Exercise{
		ID:          "test_gr_verbe_present_txt_a1_001",
		Category:    "verbe",
		Level:       LevelA1,
		Instruction: "Conjuguez le verbe au présent",
		Sentence:    "Le matin, [boire] un café.",
		Points:      15,
		TimeLimit:   45,
		Body: &TextInput{
			CorrectAnswer:     "je bois",
			Feedback:          "Boire: je bois.",
			AcceptableAnswers: []string{"moi je bois"},
		},
	}
}

func TestValidate_Valid(t *testing.T) {
	for _, ex := range []*Exercise{articleMCQ(), conjugationText()} {
		if err := ex.Validate(); err != nil {
			t.Errorf("%s: Validate() = %v", ex.ID, err)
		}
		if err := ex.ValidateKey(); err != nil {
			t.Errorf("%s: ValidateKey() = %v", ex.ID, err)
		}
	}
}

func TestValidate_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Exercise)
	}{
		{"missing id", func(e *Exercise) { e.ID = "" }},
		{"unknown level", func(e *Exercise) { e.Level = "Z9" }},
		{"zero points", func(e *Exercise) { e.Points = 0 }},
		{"negative time limit", func(e *Exercise) { e.TimeLimit = -1 }},
		{"no body", func(e *Exercise) { e.Body = nil }},
		{"single option", func(e *Exercise) { e.Body = &MCQ{Options: map[string]string{"a": "x"}, CorrectAnswer: "a"} }},
		{"blank option text", func(e *Exercise) {
			e.Body = &MCQ{Options: map[string]string{"a": "x", "b": ""}, CorrectAnswer: "a"}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := articleMCQ()
			tt.mutate(ex)
			err := ex.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformed))
		})
	}
}

func TestValidateKey_RequiresAnswerKey(t *testing.T) {
	ex := articleMCQ()
	ex.Body.(*MCQ).CorrectAnswer = "e"
	assert.NoError(t, ex.Validate())
	assert.ErrorIs(t, ex.ValidateKey(), ErrMalformed)

	txt := conjugationText()
	txt.Body.(*TextInput).CorrectAnswer = "  "
	assert.ErrorIs(t, txt.ValidateKey(), ErrMalformed)
}

func TestPublic_StripsAnswerKey(t *testing.T) {
	pub := articleMCQ().Public()
	mcq := pub.Body.(*MCQ)
	assert.Empty(t, mcq.CorrectAnswer)
	assert.Nil(t, mcq.Feedback)
	assert.Len(t, mcq.Options, 4)
	assert.NoError(t, pub.Validate())

	data, err := json.Marshal(pub)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "correctAnswer")
	assert.NotContains(t, string(data), "feedback")

	txt := conjugationText().Public()
	data, err = json.Marshal(txt)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "je bois")
}

func TestJSON_WireShape(t *testing.T) {
	data, err := json.Marshal(articleMCQ())
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "mcq", raw["type"])
	assert.Equal(t, "A1", raw["difficultyLevel"])
	assert.Equal(t, "b", raw["correctAnswer"])
	assert.IsType(t, map[string]any{}, raw["feedback"])

	var back Exercise
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, KindMCQ, back.Kind())
	assert.Equal(t, "b", back.Body.(*MCQ).CorrectAnswer)
	assert.Equal(t, 30, back.TimeLimit)
}

func TestJSON_TextInputFeedbackIsString(t *testing.T) {
	in := `{"id":"t1","category":"verbe","type":"text_input","difficultyLevel":"A2",
		"instruction":"Conjuguez","sentence":"Nous ___ .","correctAnswer":"buvons",
		"feedback":"Boire: nous buvons.","acceptableAnswers":["nous buvons"],"points":5,"timeLimit":20}`

	var ex Exercise
	require.NoError(t, json.Unmarshal([]byte(in), &ex))
	body, ok := ex.Body.(*TextInput)
	require.True(t, ok)
	assert.Equal(t, "Boire: nous buvons.", body.Feedback)
	assert.Equal(t, []string{"nous buvons"}, body.AcceptableAnswers)
}

func TestJSON_UnknownTypeIsMalformed(t *testing.T) {
	in := `{"id":"x","category":"c","type":"essay","difficultyLevel":"A1","instruction":"i","sentence":"s","points":1,"timeLimit":1}`
	var ex Exercise
	require.NoError(t, json.Unmarshal([]byte(in), &ex))
	assert.ErrorIs(t, ex.Validate(), ErrMalformed)
}

func TestJSON_FeedbackShapeMismatch(t *testing.T) {
	in := `{"id":"x","type":"mcq","feedback":"oops"}`
	var ex Exercise
	assert.Error(t, json.Unmarshal([]byte(in), &ex))
}

func TestMCQ_KeysSorted(t *testing.T) {
	m := &MCQ{Options: map[string]string{"d": "", "b": "", "a": "", "c": ""}}
	assert.Equal(t, []string{"a", "b", "c", "d"}, m.Keys())
}

func TestAnswerVariants(t *testing.T) {
	assert.Equal(t, KindMCQ, EmptyAnswer(KindMCQ).Kind())
	assert.Equal(t, KindTextInput, EmptyAnswer(KindTextInput).Kind())
	assert.True(t, EmptyAnswer(KindMCQ).Blank())
	assert.True(t, Typed{Input: "   "}.Blank())
	assert.False(t, AnswerFor(KindMCQ, "b").Blank())
	assert.Equal(t, "je bois", AnswerFor(KindTextInput, "je bois").Text())
}

func TestSplitSentence(t *testing.T) {
	tests := []struct {
		in                  string
		before, after, hint string
		found               bool
	}{
		{"En France, ___ commence.", "En France, ", " commence.", "", true},
		{"Le matin, [boire] un café.", "Le matin, ", " un café.", "boire", true},
		{"Nous _____", "Nous ", "", "", true},
		{"Pas de trou.", "Pas de trou.", "", "", false},
		{"Crochet [ouvert seulement", "Crochet [ouvert seulement", "", "", false},
	}

	for _, tt := range tests {
		g := SplitSentence(tt.in)
		if g.Before != tt.before || g.After != tt.after || g.Hint != tt.hint || g.Found != tt.found {
			t.Errorf("SplitSentence(%q) = %+v", tt.in, g)
		}
	}

	g := SplitSentence("Le matin, [boire] un café.")
	if got := g.Fill("je bois"); got != "Le matin, je bois un café." {
		t.Errorf("Fill = %q", got)
	}
}
