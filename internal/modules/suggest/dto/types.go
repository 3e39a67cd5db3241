package dto

type SuggestInput struct {
	Categories []string
	Count      int
}

type CandidateOutput struct {
	Title     string
	Category  string
	Priority  string
	Rationale string
}

type SuggestOutput struct {
	Candidates []CandidateOutput
	// Source names the generator that answered; empty when none did.
	Source string
}

type QuizOutput struct {
	Concept      string
	Prompt       string
	Options      []string
	CorrectIndex int
	Explanation  string
	Source       string
}

type AcceptInput struct {
	Title    string
	Category string
	Priority string
}
