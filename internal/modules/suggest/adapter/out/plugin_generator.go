package out

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"
	"github.com/rs/zerolog"

	missiondomain "ascend/internal/modules/mission/domain"
	generatorrpc "ascend/internal/modules/suggest/adapter/out/rpc"
	"ascend/internal/modules/suggest/domain"
	suggestout "ascend/internal/modules/suggest/port/out"
)

const defaultStartTimeout = 3 * time.Second

var ErrGeneratorTimeout = errors.New("generator timed out")

// PluginGenerator launches the generator binary for each call and talks
// to it over go-plugin's gRPC transport.
type PluginGenerator struct {
	binary string
	logger zerolog.Logger
}

func NewPluginGenerator(binary string, logger zerolog.Logger) suggestout.Generator {
	return &PluginGenerator{binary: binary, logger: logger.With().Str("component", "generator_plugin").Logger()}
}

func (g *PluginGenerator) Name() string { return "plugin" }

// Metadata starts the plugin and reports its name and version.
func (g *PluginGenerator) Metadata(ctx context.Context) (generatorrpc.Metadata, error) {
	client, closeFn, err := g.connect()
	if err != nil {
		return generatorrpc.Metadata{}, err
	}
	defer closeFn()
	meta, err := client.GetMetadata(ctx)
	if err != nil {
		return generatorrpc.Metadata{}, g.callError(ctx, "get metadata", err)
	}
	return *meta, nil
}

func (g *PluginGenerator) Suggest(ctx context.Context, req domain.Request) ([]domain.Candidate, error) {
	client, closeFn, err := g.connect()
	if err != nil {
		return nil, err
	}
	defer closeFn()

	categories := make([]string, 0, len(req.Categories))
	for _, c := range req.Categories {
		categories = append(categories, string(c))
	}
	response, err := client.Suggest(ctx, &generatorrpc.SuggestRequest{
		Categories: categories,
		Existing:   req.Existing,
		Count:      int32(req.Count),
	})
	if err != nil {
		return nil, g.callError(ctx, "suggest", err)
	}
	out := make([]domain.Candidate, 0, len(response.Candidates))
	for _, c := range response.Candidates {
		out = append(out, domain.Candidate{
			Title:     c.Title,
			Category:  missiondomain.Category(c.Category),
			Priority:  missiondomain.Priority(c.Priority),
			Rationale: c.Rationale,
		})
	}
	return out, nil
}

func (g *PluginGenerator) Quiz(ctx context.Context, concept string) (domain.QuizItem, error) {
	client, closeFn, err := g.connect()
	if err != nil {
		return domain.QuizItem{}, err
	}
	defer closeFn()
	response, err := client.Quiz(ctx, &generatorrpc.QuizRequest{Concept: concept})
	if err != nil {
		return domain.QuizItem{}, g.callError(ctx, "quiz", err)
	}
	return domain.QuizItem{
		Concept:      concept,
		Prompt:       response.Prompt,
		Options:      response.Options,
		CorrectIndex: int(response.CorrectIndex),
		Explanation:  response.Explanation,
	}, nil
}

func (g *PluginGenerator) callError(ctx context.Context, op string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ErrGeneratorTimeout, op)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (g *PluginGenerator) connect() (generatorrpc.GeneratorClient, func(), error) {
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  generatorrpc.HandshakeConfig,
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
		Plugins:          generatorrpc.PluginMap(nil),
		Cmd:              exec.Command(g.binary),
		Managed:          true,
		StartTimeout:     defaultStartTimeout,
		Logger: hclog.New(&hclog.LoggerOptions{
			Name:   "generator",
			Output: g.logger,
			Level:  hclog.Warn,
		}),
	})
	closeFn := func() { client.Kill() }

	rpcClient, err := client.Client()
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("start generator plugin: %w", err)
	}
	raw, err := rpcClient.Dispense(generatorrpc.PluginMapKey)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("dispense generator: %w", err)
	}
	typed, ok := raw.(generatorrpc.GeneratorClient)
	if !ok {
		closeFn()
		return nil, nil, fmt.Errorf("generator rpc client type mismatch")
	}
	return typed, closeFn, nil
}
