// Command generator is the reference generator plugin. It answers from a
// fixed catalogue so suggestions work offline.
package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/go-plugin"

	generatorrpc "ascend/internal/modules/suggest/adapter/out/rpc"
)

var catalogue = map[string][]generatorrpc.Candidate{
	"admin": {
		{Title: "Clear the inbox to zero", Priority: "medium", Rationale: "Unanswered mail keeps costing attention."},
		{Title: "Review this month's subscriptions", Priority: "low", Rationale: "Small leaks add up."},
	},
	"study": {
		{Title: "Read one chapter and write a summary", Priority: "high", Rationale: "Summaries turn reading into recall."},
		{Title: "Solve three practice problems", Priority: "medium", Rationale: "Practice beats rereading."},
	},
	"sport": {
		{Title: "Run 5k at an easy pace", Priority: "high", Rationale: "Aerobic base supports every other session."},
		{Title: "Mobility routine for 15 minutes", Priority: "medium", Rationale: "Keeps joints ready for heavy days."},
	},
	"personal": {
		{Title: "Call a friend you have not spoken to lately", Priority: "medium", Rationale: "Relationships need upkeep."},
		{Title: "Tidy the desk", Priority: "low", Rationale: "A clear space lowers friction to start."},
	},
	"spiritual": {
		{Title: "Ten minutes of silent meditation", Priority: "medium", Rationale: "Short and daily beats long and rare."},
		{Title: "Write three lines of gratitude", Priority: "low", Rationale: "Shifts attention to what works."},
	},
	"language": {
		{Title: "Learn twenty new words", Priority: "medium", Rationale: "Vocabulary is the bottleneck early on."},
		{Title: "Listen to a podcast episode without subtitles", Priority: "high", Rationale: "Trains comprehension at native speed."},
	},
}

type server struct{}

func (s *server) GetMetadata(_ context.Context, _ *generatorrpc.Empty) (*generatorrpc.Metadata, error) {
	return &generatorrpc.Metadata{Name: "reference-generator", Version: "1.0.0"}, nil
}

func (s *server) Suggest(_ context.Context, in *generatorrpc.SuggestRequest) (*generatorrpc.SuggestResponse, error) {
	existing := map[string]struct{}{}
	for _, title := range in.Existing {
		existing[strings.ToLower(title)] = struct{}{}
	}
	out := &generatorrpc.SuggestResponse{}
	// Round-robin over the requested categories so each one gets a turn.
	for round := 0; round < 2 && int32(len(out.Candidates)) < in.Count; round++ {
		for _, category := range in.Categories {
			entries := catalogue[category]
			if round >= len(entries) {
				continue
			}
			candidate := entries[round]
			if _, dup := existing[strings.ToLower(candidate.Title)]; dup {
				continue
			}
			candidate.Category = category
			out.Candidates = append(out.Candidates, candidate)
			if int32(len(out.Candidates)) == in.Count {
				break
			}
		}
	}
	return out, nil
}

func (s *server) Quiz(_ context.Context, in *generatorrpc.QuizRequest) (*generatorrpc.QuizResponse, error) {
	concept := strings.TrimSpace(in.Concept)
	if concept == "" {
		return nil, fmt.Errorf("concept is required")
	}
	return &generatorrpc.QuizResponse{
		Prompt:       fmt.Sprintf("Which approach helps you remember %s best?", concept),
		Options:      []string{"Rereading notes", "Explaining it from memory", "Highlighting", "Copying definitions"},
		CorrectIndex: 1,
		Explanation:  "Retrieval practice strengthens memory more than passive review.",
	}, nil
}

func main() {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: generatorrpc.HandshakeConfig,
		Plugins:         generatorrpc.PluginMap(&server{}),
		GRPCServer:      plugin.DefaultGRPCServer,
	})
}
