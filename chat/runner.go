package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/viant/agentauth/auth"
	"github.com/viant/agentauth/auth/endpoint"
	"github.com/viant/agentauth/turn"
)

// Run parses command line options and runs the interactive conversation
// loop together with the authorization callback endpoint.
func Run(args []string) error {
	options := &Options{}
	if _, err := flags.ParseArgs(options, args); err != nil {
		return err
	}
	options.Init()
	if err := options.Validate(); err != nil {
		return err
	}
	ctx := context.Background()

	aRuntime, err := options.NewRuntime()
	if err != nil {
		return err
	}
	registry := auth.NewRegistry(options.NewStore())
	logger := slog.Default()

	var serviceOptions []Option
	if options.TranscriptURL != "" {
		serviceOptions = append(serviceOptions, WithTranscript(NewTranscript(options.TranscriptURL)))
	}
	manager, err := options.NewManager(ctx)
	if err != nil {
		return err
	}
	if manager != nil {
		serviceOptions = append(serviceOptions, WithManager(manager))
	}
	service := New(aRuntime, registry, options.Variant(), serviceOptions...)

	correlator := auth.NewCorrelator(registry, options.RedirectURI)
	callback := endpoint.New(correlator, service.Resume, logger)
	mux := http.NewServeMux()
	callback.RegisterHandlers(mux, "/")
	go func() {
		if err := http.ListenAndServe(options.CallbackAddr, mux); err != nil {
			logger.Error("callback endpoint failed", "addr", options.CallbackAddr, "error", err)
		}
	}()

	return repl(ctx, service, options, os.Stdin, os.Stdout)
}

func repl(ctx context.Context, service *Service, options *Options, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprintln(out, "Type a message, /save to store the transcript, /exit to quit.")
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/exit":
			return nil
		case line == "/save":
			URL, err := service.SaveTranscript(ctx)
			if err != nil {
				fmt.Fprintf(out, "save failed: %v\n", err)
				continue
			}
			fmt.Fprintf(out, "transcript saved to %s\n", URL)
			continue
		}
		event, err := service.Query(ctx, options.UserID, line)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		render(out, event)
	}
}

func render(out io.Writer, event *turn.Event) {
	switch event.Kind {
	case turn.KindAuthRequired:
		fmt.Fprintln(out, event.Content)
		if event.AuthorizationURL != "" {
			fmt.Fprintf(out, "Open the following URL to authorize, then return here:\n%s\n", event.AuthorizationURL)
		} else if event.Inferred {
			fmt.Fprintln(out, "Authorize with the provider, then retry your request.")
		}
	case turn.KindError:
		fmt.Fprintf(out, "error: %s\n", event.Content)
	default:
		fmt.Fprintln(out, event.Content)
	}
}
