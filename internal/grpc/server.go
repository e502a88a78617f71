// internal/grpc/server.go
package grpc

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/sarcascoder/Netflix-clone/internal/domain"
	"github.com/sarcascoder/Netflix-clone/internal/metrics"
	"github.com/sarcascoder/Netflix-clone/internal/store"
)

// Server implements CatalogLookupServer on top of a CatalogStore.
type Server struct {
	store  store.CatalogStore
	logger *slog.Logger
}

// NewServer creates the lookup service over catalog.
func NewServer(catalog store.CatalogStore, logger *slog.Logger) *Server {
	return &Server{store: catalog, logger: logger}
}

// TitleToStruct flattens a title into a protobuf Struct using the JSON wire names.
func TitleToStruct(t *domain.Title) (*structpb.Struct, error) {
	cast := make([]interface{}, len(t.Cast))
	for i, name := range t.Cast {
		cast[i] = name
	}
	return structpb.NewStruct(map[string]interface{}{
		"id":             t.ID,
		"title":          t.Title,
		"description":    t.Description,
		"thumbnailUrl":   t.ThumbnailURL,
		"videoUrl":       t.VideoURL,
		"genre":          t.Genre,
		"releaseYear":    t.ReleaseYear,
		"rating":         t.Rating,
		"duration":       t.Duration,
		"featured":       t.Featured,
		"type":           string(t.Type),
		"cast":           cast,
		"director":       t.Director,
		"maturityRating": t.MaturityRating,
	})
}

// StructToTitle is the inverse of TitleToStruct.
func StructToTitle(s *structpb.Struct) *domain.Title {
	f := s.GetFields()
	t := &domain.Title{
		ID:             int64(f["id"].GetNumberValue()),
		Title:          f["title"].GetStringValue(),
		Description:    f["description"].GetStringValue(),
		ThumbnailURL:   f["thumbnailUrl"].GetStringValue(),
		VideoURL:       f["videoUrl"].GetStringValue(),
		Genre:          f["genre"].GetStringValue(),
		ReleaseYear:    int(f["releaseYear"].GetNumberValue()),
		Rating:         f["rating"].GetStringValue(),
		Duration:       f["duration"].GetStringValue(),
		Featured:       f["featured"].GetBoolValue(),
		Type:           domain.TitleType(f["type"].GetStringValue()),
		Director:       f["director"].GetStringValue(),
		MaturityRating: f["maturityRating"].GetStringValue(),
	}
	if values := f["cast"].GetListValue().GetValues(); len(values) > 0 {
		t.Cast = make([]string, len(values))
		for i, v := range values {
			t.Cast[i] = v.GetStringValue()
		}
	}
	return t
}

// GetTitleInfo returns the title as a Struct, or NotFound.
func (s *Server) GetTitleInfo(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	id := req.GetValue()
	s.logger.InfoContext(ctx, "gRPC GetTitleInfo called", slog.Int64("title_id", id))
	if id <= 0 {
		return nil, status.Errorf(codes.InvalidArgument, "title id must be positive, got %d", id)
	}

	title, err := s.store.GetTitle(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrTitleNotFound) {
			return nil, status.Errorf(codes.NotFound, "title not found with ID %d", id)
		}
		s.logger.ErrorContext(ctx, "Failed to get title for GetTitleInfo", slog.Int64("title_id", id), slog.String("error", err.Error()))
		return nil, status.Errorf(codes.Internal, "failed to retrieve title details: %v", err)
	}

	out, err := TitleToStruct(title)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode title: %v", err)
	}
	return out, nil
}

// CheckTitleExists reports whether the title is in the catalog.
func (s *Server) CheckTitleExists(ctx context.Context, req *wrapperspb.Int64Value) (*wrapperspb.BoolValue, error) {
	id := req.GetValue()
	s.logger.InfoContext(ctx, "gRPC CheckTitleExists called", slog.Int64("title_id", id))
	if id <= 0 {
		return nil, status.Errorf(codes.InvalidArgument, "title id must be positive, got %d", id)
	}

	exists, err := s.store.TitleExists(ctx, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to check title existence", slog.Int64("title_id", id), slog.String("error", err.Error()))
		return nil, status.Errorf(codes.Internal, "failed to check title existence: %v", err)
	}
	return wrapperspb.Bool(exists), nil
}

// MetricsInterceptor counts every unary call by method and status code.
func MetricsInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	resp, err := handler(ctx, req)
	metrics.RecordGRPCRequest(info.FullMethod, status.Code(err).String())
	return resp, err
}

// NewGRPCServer builds a grpc.Server with the lookup service registered.
func NewGRPCServer(catalog store.CatalogStore, logger *slog.Logger, opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(MetricsInterceptor))
	srv := grpc.NewServer(opts...)
	RegisterCatalogLookupServer(srv, NewServer(catalog, logger))
	return srv
}
