package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/compose"

	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/graph/nodes"
	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/model"
	logx "github.com/Chative-core-poc-v1/inmaculada-bot/pkg/logger"
)

const maxRunSteps = 20

// Runner executes the compiled per-message graph.
type Runner interface {
	Run(ctx context.Context, in model.Inbound) (*model.Analysis, error)
}

// Config holds everything needed to compose the message graph.
type Config struct {
	Memory     model.MemoryStore
	History    model.ConversationRepository
	Sentiment  nodes.SentimentAnalyzer
	Classifier nodes.Classifier
	// Escalator is optional. Without it weak readings are answered locally.
	Escalator    nodes.Escalator
	Responder    nodes.Responder
	HistoryLimit int
	Callbacks    []callbacks.Handler
	Now          func() time.Time
}

// GraphBuilder handles the construction of the message graph
type GraphBuilder struct {
	config *Config
	graph  *compose.Graph[model.Inbound, *model.Analysis]
}

type graphRunner struct {
	runnable compose.Runnable[model.Inbound, *model.Analysis]
	handlers []callbacks.Handler
}

func (r *graphRunner) Run(ctx context.Context, in model.Inbound) (*model.Analysis, error) {
	out, err := r.runnable.Invoke(ctx, in, compose.WithCallbacks(r.handlers...))
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("graph returned no analysis")
	}
	return out, nil
}

// Build validates cfg, composes the graph and returns a Runner.
func Build(ctx context.Context, cfg Config) (Runner, error) {
	if cfg.Memory == nil {
		return nil, fmt.Errorf("memory store is nil")
	}
	if cfg.Sentiment == nil || cfg.Classifier == nil {
		return nil, fmt.Errorf("analyzers are not properly initialized")
	}
	if cfg.Responder == nil {
		return nil, fmt.Errorf("responder is nil")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	builder := &GraphBuilder{
		config: &cfg,
		graph: compose.NewGraph[model.Inbound, *model.Analysis](
			compose.WithGenLocalState(func(ctx context.Context) *nodes.TurnState {
				return &nodes.TurnState{}
			}),
		),
	}

	if err := builder.addNodes(); err != nil {
		return nil, err
	}
	if err := builder.addEdges(); err != nil {
		return nil, err
	}
	if err := builder.addBranches(); err != nil {
		return nil, err
	}

	runnable, err := builder.compile(ctx)
	if err != nil {
		return nil, err
	}
	return &graphRunner{runnable: runnable, handlers: cfg.Callbacks}, nil
}

func (b *GraphBuilder) escalationEnabled() bool {
	return b.config.Escalator != nil
}

type nodeSpec struct {
	key  string
	node *compose.Lambda
	opts []compose.GraphAddNodeOpt
}

// addNodes adds all processing nodes to the graph
func (b *GraphBuilder) addNodes() error {
	c := b.config
	specs := []nodeSpec{
		{nodes.NodeLoad, nodes.NewLoadNode(c.Memory, c.History, c.HistoryLimit, c.Now),
			[]compose.GraphAddNodeOpt{compose.WithStatePreHandler(nodes.NewLoadPreHandler(c.Now))}},
		{nodes.NodeAnalyze, nodes.NewAnalyzeNode(c.Sentiment, c.Classifier), nil},
		{nodes.NodeRemember, nodes.NewRememberNode(c.Now), nil},
		{nodes.NodeRespond, nodes.NewRespondNode(c.Responder), nil},
		{nodes.NodeRecord, nodes.NewRecordNode(c.Memory, c.History, c.Now), nil},
	}
	if b.escalationEnabled() {
		specs = append(specs, nodeSpec{nodes.NodeEscalate, nodes.NewEscalateNode(c.Escalator),
			[]compose.GraphAddNodeOpt{compose.WithStatePostHandler(nodes.NewEscalatePostHandler())}})
	}

	for _, n := range specs {
		if err := b.graph.AddLambdaNode(n.key, n.node, n.opts...); err != nil {
			logx.Error().Err(err).Str("node", n.key).Msg("Error adding node")
			return fmt.Errorf("error adding node %s: %w", n.key, err)
		}
	}
	return nil
}

// addEdges creates the main flow connections between nodes
func (b *GraphBuilder) addEdges() error {
	edges := [][2]string{
		{compose.START, nodes.NodeLoad},
		{nodes.NodeLoad, nodes.NodeAnalyze},
		{nodes.NodeRemember, nodes.NodeRespond},
		{nodes.NodeRespond, nodes.NodeRecord},
		{nodes.NodeRecord, compose.END},
	}
	if b.escalationEnabled() {
		edges = append(edges, [2]string{nodes.NodeEscalate, nodes.NodeRemember})
	} else {
		edges = append(edges, [2]string{nodes.NodeAnalyze, nodes.NodeRemember})
	}

	for _, edge := range edges {
		if err := b.graph.AddEdge(edge[0], edge[1]); err != nil {
			logx.Error().Err(err).Str("from", edge[0]).Str("to", edge[1]).Msg("Error adding edge")
			return fmt.Errorf("error adding edge %s -> %s: %w", edge[0], edge[1], err)
		}
	}
	return nil
}

// addBranches routes weak readings through the escalation node.
func (b *GraphBuilder) addBranches() error {
	if !b.escalationEnabled() {
		return nil
	}
	escalationBranch := compose.NewGraphBranch(
		nodes.NewEscalationCondition(),
		map[string]bool{
			nodes.NodeEscalate: true,
			nodes.NodeRemember: true,
		},
	)
	if err := b.graph.AddBranch(nodes.NodeAnalyze, escalationBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding escalation branch")
		return fmt.Errorf("error adding escalation branch: %w", err)
	}
	return nil
}

// compile finalizes and compiles the graph
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[model.Inbound, *model.Analysis], error) {
	runnable, err := b.graph.Compile(ctx, compose.WithMaxRunSteps(maxRunSteps), compose.WithGraphName("message"))
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Bool("escalation", b.escalationEnabled()).Msg("Graph compiled successfully")
	return runnable, nil
}
