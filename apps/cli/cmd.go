package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/bobur6/professor-ai-helper/core"
	"github.com/bobur6/professor-ai-helper/core/gradebook"
	backendsvc "github.com/bobur6/professor-ai-helper/services/backend"
	logsvc "github.com/bobur6/professor-ai-helper/services/logger"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp     = errors.New("help provided")
	errReported = errors.New("error already reported")
)

type commandLine struct {
	conf   *core.Config
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	// set once flags are parsed
	tokens   *backendsvc.MemoryTokenStore
	client   *backendsvc.Client
	logger   core.Logger
	notifier *consoleNotifier
	v        *core.Validator
}

func (cli *commandLine) run(args []string) error {
	root := cli.rootCmd()
	root.SetArgs(args[1:])
	root.SetIn(cli.in)
	root.SetOut(cli.out)
	root.SetErr(cli.errOut)

	err := root.Execute()
	if err != nil && cli.notifier != nil && cli.notifier.failed {
		return errReported
	}
	return err
}

func (cli *commandLine) rootCmd() *cobra.Command {
	var (
		baseURL string
		token   string
		verbose bool
	)

	root := &cobra.Command{
		Use:           "gradebook",
		Short:         "Manage class gradebooks on the Professor AI Helper service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cli.setup(baseURL, token, verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errHelp
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&baseURL, "api", cli.conf.API.BaseURL, "base URL of the API")
	flags.StringVar(&token, "token", cli.conf.API.Token, "bearer token, as printed by login")
	flags.BoolVarP(&verbose, "verbose", "v", false, "log API requests")

	root.AddCommand(
		cli.registerCmd(),
		cli.loginCmd(),
		cli.classesCmd(),
		cli.showCmd(),
		cli.addStudentCmd(),
		cli.renameStudentCmd(),
		cli.rmStudentCmd(),
		cli.addAssignmentCmd(),
		cli.renameAssignmentCmd(),
		cli.rmAssignmentCmd(),
		cli.gradeCmd(),
		cli.reportCmd(),
		cli.askCmd(),
		cli.fileReportCmd(),
		cli.importCmd(),
		cli.docsCmd(),
		cli.docCmd(),
		cli.uploadCmd(),
		cli.rmDocCmd(),
		cli.docAskCmd(),
	)
	return root
}

func (cli *commandLine) setup(baseURL, token string, verbose bool) {
	cli.logger = core.NopLogger{}
	if verbose {
		cli.logger = logsvc.NewRollbarLogger(log.New(cli.errOut, "CLI : ", log.LstdFlags), cli.conf)
	}
	cli.notifier = &consoleNotifier{out: cli.out}
	cli.v = core.NewValidator()
	cli.tokens = backendsvc.NewMemoryTokenStore(token)

	conf := *cli.conf
	conf.API.BaseURL = baseURL
	cli.client = backendsvc.NewClientFromConfig(&conf, cli.tokens,
		backendsvc.WithLogger(cli.logger),
		backendsvc.WithNavigator(backendsvc.NavigatorFunc(func(path string) {
			fmt.Fprintf(cli.out, "session rejected, run `gradebook login` to sign in again (%s)\n", path)
		})),
	)
}

// controller returns a Controller of classID with its cache loaded.
func (cli *commandLine) controller(cmd *cobra.Command, classID int) (*gradebook.Controller, error) {
	ctrl := gradebook.NewController(classID, gradebook.Deps{
		Gateway:        cli.client,
		Assistant:      cli.client,
		Files:          cli.client,
		Validator:      cli.v,
		Notifier:       cli.notifier,
		Logger:         cli.logger,
		SequenceGrades: cli.conf.Gradebook.SequenceGrades,
		Locale:         cli.conf.Locale,
	})
	if err := ctrl.Load(cmd.Context()); err != nil {
		return nil, err
	}
	return ctrl, nil
}

func parseIDs(args []string, names ...string) ([]int, error) {
	ids := make([]int, len(names))
	for i, name := range names {
		id, err := strconv.Atoi(args[i])
		if err != nil {
			return nil, core.NewValidationError(fmt.Errorf("%s must be a number (got '%s')", name, args[i]))
		}
		ids[i] = id
	}
	return ids, nil
}
