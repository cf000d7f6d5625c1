package client

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"

	pb "github.com/ppiankov/riskgate/api/riskgate/v1"
	"github.com/ppiankov/riskgate/internal/model"
)

// DefaultTimeout bounds each RPC when the caller's context has no deadline.
const DefaultTimeout = 5 * time.Second

// Client connects to a riskgate gRPC server.
type Client struct {
	conn   *grpc.ClientConn
	client pb.RiskServiceClient
}

// New creates a gRPC client connected to the given address.
func New(addr string) (*Client, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to risk server: %w", err)
	}
	return &Client{
		conn:   conn,
		client: pb.NewRiskServiceClient(conn),
	}, nil
}

// Classify sends a profile to the remote server. Taxonomy errors reported
// by the server come back wrapping the matching model sentinel, so
// errors.Is and model.Outcome work as they do in-process. Transport
// failures are returned as they are; they are never turned into a level.
func (c *Client) Classify(ctx context.Context, p model.ProjectProfile) (pb.Reply, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	req, err := pb.ProfileToStruct(p)
	if err != nil {
		return pb.Reply{}, fmt.Errorf("encode profile: %w", err)
	}

	resp, err := c.client.Classify(ctx, req)
	if err != nil {
		return pb.Reply{}, pb.FromStatus(err)
	}
	return pb.ResultFromStruct(resp)
}

// RuleBaseInfo returns the server's description of its active rule base.
func (c *Client) RuleBaseInfo(ctx context.Context) (map[string]any, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	resp, err := c.client.RuleBaseInfo(ctx, &emptypb.Empty{})
	if err != nil {
		return nil, pb.FromStatus(err)
	}
	return resp.AsMap(), nil
}

// Close closes the underlying gRPC connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, DefaultTimeout)
}
