// Command componentize attaches to a component-builder project, follows
// or resumes its generation stream, and renders the reconstructed
// conversation. It can also browse generated components and serve them
// over MCP.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/johnathanchiu/componentize/internal/format"
	"github.com/johnathanchiu/componentize/internal/transport"
	"github.com/johnathanchiu/componentize/pkg/builder"
	"github.com/johnathanchiu/componentize/pkg/builder/effects"
	"github.com/johnathanchiu/componentize/pkg/builder/events"
	"github.com/johnathanchiu/componentize/pkg/builder/resume"
	"github.com/johnathanchiu/componentize/pkg/config"
	"github.com/johnathanchiu/componentize/pkg/history"
	"github.com/johnathanchiu/componentize/pkg/log"
	"github.com/johnathanchiu/componentize/pkg/mcpserver"
	"github.com/johnathanchiu/componentize/pkg/registry"
)

var (
	cfgPath string
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:   "componentize",
	Short: "Follow and inspect AI component-builder sessions",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
		log.Init(log.Config{Level: cfg.LogLevel})

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "componentize.yaml", "config file path")
	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newComponentsCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newMCPCmd())
}

func main() {
	defer log.Sync()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "componentize: %v\n", err)
		os.Exit(1)
	}
}

// wiring builds the per-project session stack: registry-backed side
// effects, durable history, and the SSE event source.
type wiring struct {
	session    *builder.Session
	controller *resume.Controller
	canvas     *registry.Canvas
}

func wire() (*wiring, error) {
	reg, err := registry.New(cfg.GeneratedDir)
	if err != nil {
		return nil, err
	}
	canvas := registry.NewCanvas()

	session := builder.NewSession(builder.Dependencies{
		Dispatcher: effects.NewDispatcher(effects.Dependencies{
			Registry: reg,
			Canvas:   canvas,
			Tasks:    registry.NewTaskBoard(),
			Logger:   log.L(),
		}),
		Logger: log.L(),
	})

	controller := resume.NewController(resume.Dependencies{
		Session: session,
		Source:  transport.NewSSEClient(cfg.ServerURL, nil, log.L()),
		History: history.NewStore(cfg.HistoryDir),
		Logger:  log.L(),
	})

	return &wiring{session: session, controller: controller, canvas: canvas}, nil
}

func newGenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate <project-id> <prompt>",
		Short: "Start a generation turn and render the finished transcript",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := wire()
			if err != nil {
				return err
			}

			if err := w.controller.Generate(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}

			return render(w)
		},
	}
}

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <project-id>",
		Short: "Hydrate a project transcript and resume any in-progress turn",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := wire()
			if err != nil {
				return err
			}

			if err := w.controller.Start(cmd.Context(), args[0]); err != nil {
				return err
			}

			return render(w)
		},
	}
}

func render(w *wiring) error {
	err := format.WriteTranscript(os.Stdout,
		w.session.Messages(), format.TerminalWidth(), format.Styled())
	if err != nil {
		return err
	}

	if items := w.canvas.Items(); len(items) > 0 {
		fmt.Println()
		if err := format.WriteCanvas(os.Stdout, items, "table"); err != nil {
			return err
		}
	}
	fmt.Printf("\nstatus: %s\n", w.session.Status())

	return nil
}

func newComponentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "components",
		Short: "Browse generated components",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List generated component names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.New(cfg.GeneratedDir)
			if err != nil {
				return err
			}
			names, err := reg.List()
			if err != nil {
				return err
			}

			return format.WriteNames(os.Stdout, names)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <name>",
		Short: "Print a generated component's source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.New(cfg.GeneratedDir)
			if err != nil {
				return err
			}
			comp, err := reg.Read(args[0])
			if err != nil {
				return err
			}
			fmt.Print(comp.Code)

			return nil
		},
	})

	return cmd
}

func newExportCmd() *cobra.Command {
	var layoutPath string

	cmd := &cobra.Command{
		Use:   "export <page-name>",
		Short: "Export a canvas layout as a page file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(layoutPath)
			if err != nil {
				return fmt.Errorf("read layout: %w", err)
			}
			var layout struct {
				Components []events.CanvasComponent `json:"components"`
			}
			if err := json.Unmarshal(data, &layout); err != nil {
				return fmt.Errorf("parse layout: %w", err)
			}

			reg, err := registry.New(cfg.GeneratedDir)
			if err != nil {
				return err
			}
			path, err := reg.ExportPage(args[0], layout.Components)
			if err != nil {
				return err
			}
			fmt.Println(path)

			return nil
		},
	}
	cmd.Flags().StringVar(&layoutPath, "layout", "layout.json", "canvas layout JSON file")

	return cmd
}

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve generated components over MCP stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.New(cfg.GeneratedDir)
			if err != nil {
				return err
			}

			return mcpserver.ServeStdio(mcpserver.New(reg, nil))
		},
	}
}
