// internal/clients/catalog_grpc_client.go
package clients

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/sarcascoder/Netflix-clone/internal/domain"
	lookup "github.com/sarcascoder/Netflix-clone/internal/grpc"
)

const lookupCallTimeout = 3 * time.Second

// CatalogLookupClient calls catalog.CatalogLookup on a remote catalog service. It satisfies
// the title lookup the watchlist add operation needs when the catalog runs elsewhere.
type CatalogLookupClient struct {
	conn   *grpc.ClientConn
	logger *slog.Logger
}

// NewCatalogLookupClient connects lazily; the first call establishes the connection.
func NewCatalogLookupClient(addr string, logger *slog.Logger, opts ...grpc.DialOption) (*CatalogLookupClient, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog lookup client for %s: %w", addr, err)
	}
	logger.Info("Catalog lookup client created", slog.String("address", addr))
	return &CatalogLookupClient{conn: conn, logger: logger}, nil
}

func (c *CatalogLookupClient) TitleExists(ctx context.Context, id int64) (bool, error) {
	callCtx, cancel := context.WithTimeout(ctx, lookupCallTimeout)
	defer cancel()

	out := new(wrapperspb.BoolValue)
	if err := c.conn.Invoke(callCtx, lookup.CheckTitleExistsMethod, wrapperspb.Int64(id), out); err != nil {
		st, _ := status.FromError(err)
		c.logger.ErrorContext(ctx, "CatalogLookup.CheckTitleExists call failed",
			slog.Int64("title_id", id),
			slog.String("code", st.Code().String()),
			slog.String("message", st.Message()))
		return false, fmt.Errorf("grpc CheckTitleExists failed for title %d: %w", id, err)
	}
	return out.GetValue(), nil
}

// GetTitleInfo returns the remote title. A missing title is an error matching ErrNotFound.
func (c *CatalogLookupClient) GetTitleInfo(ctx context.Context, id int64) (*domain.Title, error) {
	callCtx, cancel := context.WithTimeout(ctx, lookupCallTimeout)
	defer cancel()

	out := new(structpb.Struct)
	if err := c.conn.Invoke(callCtx, lookup.GetTitleInfoMethod, wrapperspb.Int64(id), out); err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("title %d: %w", id, ErrNotFound)
		}
		c.logger.ErrorContext(ctx, "CatalogLookup.GetTitleInfo call failed", slog.Int64("title_id", id), slog.String("error", err.Error()))
		return nil, fmt.Errorf("grpc GetTitleInfo failed for title %d: %w", id, err)
	}
	return lookup.StructToTitle(out), nil
}

func (c *CatalogLookupClient) Close() error {
	if c.conn != nil {
		c.logger.Info("Closing catalog lookup connection")
		return c.conn.Close()
	}
	return nil
}
