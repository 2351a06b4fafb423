// Package jobtest provides a worker.JobClient backed by an in-memory gateway
// that records every job command a handler sends.
package jobtest

import (
	"context"
	"sync"

	"github.com/camunda/zeebe/clients/go/v8/pkg/commands"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"google.golang.org/grpc"
)

const (
	Complete = "complete"
	Fail     = "fail"
	Throw    = "throw"
)

// Command is one request as the gateway received it. CtxErr is the state of
// the request context on arrival; a non-nil value means the call never
// reached the broker.
type Command struct {
	Kind         string
	JobKey       int64
	Retries      int32
	ErrorCode    string
	ErrorMessage string
	Variables    string
	CtxErr       error
}

// Gateway answers CompleteJob, FailJob and ThrowError. Any other call panics
// on the nil embedded client.
type Gateway struct {
	pb.GatewayClient

	mu       sync.Mutex
	commands []Command
	// Errs is consumed one entry per call before a call succeeds.
	Errs []error
}

func (g *Gateway) record(ctx context.Context, c Command) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	c.CtxErr = ctx.Err()
	g.commands = append(g.commands, c)
	if c.CtxErr != nil {
		return c.CtxErr
	}
	if len(g.Errs) > 0 {
		err := g.Errs[0]
		g.Errs = g.Errs[1:]
		return err
	}
	return nil
}

func (g *Gateway) CompleteJob(ctx context.Context, in *pb.CompleteJobRequest, _ ...grpc.CallOption) (*pb.CompleteJobResponse, error) {
	if err := g.record(ctx, Command{Kind: Complete, JobKey: in.JobKey, Variables: in.Variables}); err != nil {
		return nil, err
	}
	return &pb.CompleteJobResponse{}, nil
}

func (g *Gateway) FailJob(ctx context.Context, in *pb.FailJobRequest, _ ...grpc.CallOption) (*pb.FailJobResponse, error) {
	err := g.record(ctx, Command{
		Kind:         Fail,
		JobKey:       in.JobKey,
		Retries:      in.Retries,
		ErrorMessage: in.ErrorMessage,
		Variables:    in.Variables,
	})
	if err != nil {
		return nil, err
	}
	return &pb.FailJobResponse{}, nil
}

func (g *Gateway) ThrowError(ctx context.Context, in *pb.ThrowErrorRequest, _ ...grpc.CallOption) (*pb.ThrowErrorResponse, error) {
	err := g.record(ctx, Command{
		Kind:         Throw,
		JobKey:       in.JobKey,
		ErrorCode:    in.ErrorCode,
		ErrorMessage: in.ErrorMessage,
		Variables:    in.Variables,
	})
	if err != nil {
		return nil, err
	}
	return &pb.ThrowErrorResponse{}, nil
}

// Commands returns every request received so far.
func (g *Gateway) Commands() []Command {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Command(nil), g.commands...)
}

// Delivered returns the requests of kind that arrived with a live context.
func (g *Gateway) Delivered(kind string) []Command {
	var out []Command
	for _, c := range g.Commands() {
		if c.Kind == kind && c.CtxErr == nil {
			out = append(out, c)
		}
	}
	return out
}

// Client implements worker.JobClient with the real zeebe commands.
type Client struct {
	Gateway *Gateway
}

func NewClient() *Client {
	return &Client{Gateway: &Gateway{}}
}

func noRetry(context.Context, error) bool { return false }

func (c *Client) NewCompleteJobCommand() commands.CompleteJobCommandStep1 {
	return commands.NewCompleteJobCommand(c.Gateway, noRetry)
}

func (c *Client) NewFailJobCommand() commands.FailJobCommandStep1 {
	return commands.NewFailJobCommand(c.Gateway, noRetry)
}

func (c *Client) NewThrowErrorCommand() commands.ThrowErrorCommandStep1 {
	return commands.NewThrowErrorCommand(c.Gateway, noRetry)
}
