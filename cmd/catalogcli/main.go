// cmd/catalogcli/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/sarcascoder/Netflix-clone/internal/clients"
	"github.com/sarcascoder/Netflix-clone/internal/config"
	"github.com/sarcascoder/Netflix-clone/internal/domain"
	"github.com/sarcascoder/Netflix-clone/internal/logging"
	"github.com/sarcascoder/Netflix-clone/pkg/auth"
)

const usage = `usage: catalogcli <command> [flags]

commands:
  titles  [-search s] [-genre g] [-featured true|false] [-type movie|series]
  title   <id>
  list
  add     <titleId>
  remove  <titleId>
  token   <viewerId>   (signs a token with JWT_SECRET, for local use)
`

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New(usage)
	}
	cfg := config.LoadClient()
	logger := logging.New(os.Stderr, cfg.LogLevel)
	ctx = logging.ContextWithNewRequestID(ctx)

	if args[0] == "token" {
		return issueToken(logger, args[1:], out)
	}

	opts := []clients.Option{clients.WithLogger(logger), clients.WithToken(cfg.Token)}
	if cfg.RedisAddr != "" {
		rdb, err := clients.ConnectRedis(ctx, cfg.RedisAddr)
		if err != nil {
			return err
		}
		defer rdb.Close()
		opts = append(opts, clients.WithCacheBackend(clients.NewRedisBackend(rdb, "catalogcli", 5*time.Minute)))
	}
	client := clients.NewClient(cfg.APIURL, opts...)

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "titles":
		fs := flag.NewFlagSet("titles", flag.ContinueOnError)
		search := fs.String("search", "", "case-insensitive substring of the title")
		genre := fs.String("genre", "", "exact genre")
		featured := fs.String("featured", "", "true or false")
		typ := fs.String("type", "", "movie or series")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		filter := domain.ListTitlesQuery{Search: *search, Genre: *genre, Featured: *featured, Type: *typ}.Filter()
		if *featured != "" && filter.Featured == nil {
			return fmt.Errorf("invalid -featured %q", *featured)
		}
		titles, err := client.ListTitles(ctx, filter)
		if err != nil {
			return err
		}
		return printJSON(out, titles)

	case "title":
		id, err := idArg(rest)
		if err != nil {
			return err
		}
		title, err := client.GetTitle(ctx, id)
		if err != nil {
			return err
		}
		return printJSON(out, title)

	case "list":
		titles, err := client.ListWatchlist(ctx)
		if clients.IsUnauthorized(err) {
			return errors.New("not signed in: set CATALOG_TOKEN")
		}
		if err != nil {
			return err
		}
		return printJSON(out, titles)

	case "add":
		id, err := idArg(rest)
		if err != nil {
			return err
		}
		entry, err := client.AddToWatchlist(ctx, id)
		if err != nil {
			return err
		}
		return printJSON(out, entry)

	case "remove":
		id, err := idArg(rest)
		if err != nil {
			return err
		}
		if err := client.RemoveFromWatchlist(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(out, "removed %d\n", id)
		return nil
	}
	return fmt.Errorf("unknown command %q\n\n%s", cmd, usage)
}

func issueToken(logger *slog.Logger, args []string, out io.Writer) error {
	id, err := idArg(args)
	if err != nil {
		return err
	}
	ttl, err := time.ParseDuration(getenv("JWT_TTL", "24h"))
	if err != nil {
		return fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	tokens, err := auth.NewTokenManager(os.Getenv("JWT_SECRET"), ttl)
	if err != nil {
		return err
	}
	token, err := tokens.Generate(id)
	if err != nil {
		return err
	}
	logger.Debug("Issued viewer token", slog.Int64("viewerID", id))
	fmt.Fprintln(out, token)
	return nil
}

func idArg(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, errors.New("expected exactly one numeric id")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", args[0])
	}
	return id, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func printJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
