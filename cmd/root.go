// Package cmd provides CLI implementations.
package cmd

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/polint/polint/internal/config"
	"github.com/polint/polint/internal/logging"
)

var rootCmd = rootCommand{}

// errorWithUsage marks an error that should display command usage.
type errorWithUsage struct{ msg string }

func (e errorWithUsage) Error() string { return e.msg }

// NewErrorWithUsage creates an error that should display usage (e.g. argument/flag errors).
func NewErrorWithUsage(a ...interface{}) error {
	return errorWithUsage{msg: fmt.Sprintln(a...)}
}

// NewErrorWithUsageF creates an error that should display usage.
func NewErrorWithUsageF(format string, a ...interface{}) error {
	return errorWithUsage{msg: fmt.Sprintf(format, a...)}
}

// NewStandardError creates an error that should not display usage.
func NewStandardError(a ...interface{}) error {
	return fmt.Errorf("%s", fmt.Sprint(a...))
}

// NewStandardErrorF creates an error that should not display usage.
func NewStandardErrorF(format string, a ...interface{}) error {
	return fmt.Errorf(format, a...)
}

// IsErrorWithUsage returns true if the error should display command usage.
func IsErrorWithUsage(err error) bool {
	_, ok := err.(errorWithUsage)
	return ok
}

// Response wraps error for subcommand, and is returned from cmd package.
type Response struct {
	// Err contains error returned from the subcommand executed.
	Err error

	// Cmd contains the command object.
	Cmd *cobra.Command
}

// IsUserError reports whether Err should be reported with usage, the way
// the teacher's main.go distinguished argument mistakes from runtime
// failures.
func (r Response) IsUserError() bool {
	return IsErrorWithUsage(r.Err)
}

type rootCommand struct {
	cmd *cobra.Command
}

func (v *rootCommand) initLog() {
	verbose := viper.GetInt("verbose")
	quiet := viper.GetInt("quiet")
	if verbose > 0 {
		logging.SetVerbose(true)
	}
	if quiet > 0 {
		logging.Log().SetLevel(log.WarnLevel)
	}
}

func (v *rootCommand) initProject() {
	config.Open("")
}

// Command represents the base command when called without any subcommands.
func (v *rootCommand) Command() *cobra.Command {
	if v.cmd != nil {
		return v.cmd
	}

	v.cmd = &cobra.Command{
		Use:   "polint",
		Short: "Lint and reformat gettext PO translation catalogs",
		// Let main.go handle error output; do not show usage on every error.
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return NewErrorWithUsage("run 'polint -h' for help")
		},
	}
	v.cmd.PersistentFlags().CountP("quiet", "q", "quiet mode")
	v.cmd.PersistentFlags().CountP("verbose", "v", "verbose mode")
	v.cmd.PersistentFlags().String("config", "", "load polint.yaml from this path instead of discovering one")

	_ = viper.BindPFlag("quiet", v.cmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("verbose", v.cmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("config", v.cmd.PersistentFlags().Lookup("config"))

	v.AddCommand(checkCmd(), statCmd(), reformatCmd())

	return v.cmd
}

func (v *rootCommand) AddCommand(cmds ...*cobra.Command) {
	v.Command().AddCommand(cmds...)
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once to the rootCmd.
func Execute() Response {
	var resp Response

	setSilenceErrorsRecursive(rootCmd.Command())

	c, err := rootCmd.Command().ExecuteC()
	resp.Err = err
	resp.Cmd = c
	return resp
}

func init() {
	cobra.OnInitialize(rootCmd.initLog)
	cobra.OnInitialize(rootCmd.initProject)
}

// setSilenceErrorsRecursive sets SilenceErrors on c and all its descendants.
func setSilenceErrorsRecursive(c *cobra.Command) {
	c.SilenceErrors = true
	for _, child := range c.Commands() {
		setSilenceErrorsRecursive(child)
	}
}

// loadConfig reads polint.yaml, honoring --config.
func loadConfig() (*config.Config, error) {
	return config.Load(viper.GetString("config"))
}
