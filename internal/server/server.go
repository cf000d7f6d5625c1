package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	pb "github.com/ppiankov/riskgate/api/riskgate/v1"
	"github.com/ppiankov/riskgate/internal/audit"
	"github.com/ppiankov/riskgate/internal/classifier"
	"github.com/ppiankov/riskgate/internal/model"
	"github.com/ppiankov/riskgate/internal/rulebase"
)

// Config holds gRPC server configuration.
type Config struct {
	Port      int
	RulesPath string
	CacheSize int
	AuditPath string // optional decision log
	Logger    *slog.Logger
}

// Server implements the RiskService gRPC server.
type Server struct {
	holder *classifier.Holder
	cfg    Config
	log    *slog.Logger
	audit  *audit.Log

	grpcServer *grpc.Server
}

var _ pb.RiskServiceServer = (*Server)(nil)

// New creates a gRPC server with the rule base at cfg.RulesPath loaded.
// A rule base that fails to load is fatal here; later reload failures
// are not.
func New(cfg Config) (*Server, error) {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	s := &Server{
		holder:     classifier.NewHolder(nil),
		cfg:        cfg,
		log:        log,
		grpcServer: grpc.NewServer(),
	}
	if err := s.ReloadRuleBase(); err != nil {
		return nil, err
	}
	if cfg.AuditPath != "" {
		l, err := audit.Open(cfg.AuditPath)
		if err != nil {
			return nil, err
		}
		s.audit = l
	}

	pb.RegisterRiskServiceServer(s.grpcServer, s)
	return s, nil
}

// Serve starts the gRPC server on the configured port. Blocks until stopped.
func (s *Server) Serve() error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", s.cfg.Port, err)
	}
	return s.ServeOn(lis)
}

// ServeOn starts the gRPC server on the given listener.
func (s *Server) ServeOn(lis net.Listener) error {
	s.log.Info("serving", "addr", lis.Addr().String(), "service", pb.ServiceName)
	return s.grpcServer.Serve(lis)
}

// GracefulStop gracefully shuts down the gRPC server and closes the
// decision log.
func (s *Server) GracefulStop() {
	s.grpcServer.GracefulStop()
	if s.audit != nil {
		if err := s.audit.Close(); err != nil {
			s.log.Warn("close decision log", "error", err)
		}
		s.audit = nil
	}
}

// Holder exposes the engine holder, e.g. for an in-process MCP server.
func (s *Server) Holder() *classifier.Holder {
	return s.holder
}

// Classify implements the Classify RPC.
func (s *Server) Classify(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	requestID := uuid.NewString()
	log := s.log.With("request_id", requestID)

	e := s.holder.Engine()
	if e == nil {
		err := model.ErrNotLoaded
		log.Warn("classify rejected", "outcome", model.Outcome(err))
		return nil, pb.ToStatus(err)
	}

	p, err := pb.ProfileFromStruct(req)
	if err == nil {
		var r model.Result
		r, err = e.Classify(p)
		s.record(requestID, e.RuleBase().Hash(), p, r, err)
		if err == nil {
			log.Debug("classified", "risk", r.Risk.String(), "base_rule", r.BaseRuleID, "overrides", len(r.Applied))
			return pb.ResultToStruct(r, requestID, e.RuleBase().Hash())
		}
	}

	switch outcome := model.Outcome(err); outcome {
	case model.OutcomeInvalidProfile:
		log.Info("classify rejected", "outcome", outcome, "values", model.ErrorValues(err))
	default:
		log.Error("classify failed", "outcome", outcome, "error", err, "values", model.ErrorValues(err))
	}
	return nil, pb.ToStatus(err)
}

// record appends to the decision log when one is configured. A write
// failure is logged and does not fail the request.
func (s *Server) record(requestID, hash string, p model.ProjectProfile, r model.Result, err error) {
	if s.audit == nil {
		return
	}
	if werr := s.audit.Record(audit.NewEntry("grpc", requestID, hash, p, r, err)); werr != nil {
		s.log.Error("decision log write failed", "request_id", requestID, "error", werr)
	}
}

// RuleBaseInfo implements the RuleBaseInfo RPC.
func (s *Server) RuleBaseInfo(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	e := s.holder.Engine()
	if e == nil {
		return nil, pb.ToStatus(model.ErrNotLoaded)
	}
	rb := e.RuleBase()

	rules := make([]any, 0, len(rb.Rules()))
	for _, r := range rb.Rules() {
		rules = append(rules, map[string]any{
			"id":   r.ID,
			"when": r.Describe(),
			"risk": r.Risk.String(),
		})
	}
	overrides := make([]any, 0, len(rb.Overrides()))
	for _, o := range rb.Overrides() {
		overrides = append(overrides, map[string]any{
			"id":      o.ID,
			"clauses": float64(len(o.Clauses)),
		})
	}
	categories := make([]any, 0, len(rb.Catalogue()))
	for _, c := range rb.Catalogue() {
		categories = append(categories, c.Name)
	}

	return structpb.NewStruct(map[string]any{
		"version":    rb.Version(),
		"hash":       rb.Hash(),
		"rules":      rules,
		"overrides":  overrides,
		"categories": categories,
	})
}

// ReloadRuleBase loads the configured rule base and swaps it in
// atomically. On failure the previously active rule base stays in use.
func (s *Server) ReloadRuleBase() error {
	rb, err := rulebase.Load(s.cfg.RulesPath)
	if err != nil {
		return err
	}
	e, err := classifier.New(rb, classifier.WithCache(s.cfg.CacheSize))
	if err != nil {
		return err
	}

	prev := s.holder.Swap(e)
	attrs := []any{"version", rb.Version(), "hash", rb.Hash()}
	if prev != nil {
		attrs = append(attrs, "previous_hash", prev.RuleBase().Hash())
	}
	s.log.Info("rule base loaded", attrs...)
	return nil
}
