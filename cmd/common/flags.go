package common

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ducminhle1904/indicator-engine/pkg/config"
)

// CommonFlags contains flags that are shared across multiple commands
type CommonFlags struct {
	// Environment and configuration
	EnvFile     *string
	DataRoot    *string
	ConsoleOnly *bool

	// Output
	NoColors *bool

	// Help and version
	Version *bool
	Help    *bool
}

// RegisterCommonFlags registers common flags on fs
func RegisterCommonFlags(fs *flag.FlagSet) *CommonFlags {
	return &CommonFlags{
		EnvFile:     fs.String("env", config.DefaultEnvFile, "Environment file path"),
		DataRoot:    fs.String("data-root", config.DefaultDataRoot, "Data root directory"),
		ConsoleOnly: fs.Bool("console-only", false, "Console output only (no file output)"),

		NoColors: fs.Bool("no-colors", false, "Disable colored output"),

		Version: fs.Bool("version", false, "Show version information"),
		Help:    fs.Bool("help", false, "Show help information"),
	}
}

// FlagValidator provides flag validation utilities
type FlagValidator struct {
	errors []string
}

// NewFlagValidator creates a new flag validator
func NewFlagValidator() *FlagValidator {
	return &FlagValidator{
		errors: make([]string, 0),
	}
}

// ValidateFloat validates a float flag value
func (v *FlagValidator) ValidateFloat(name string, value float64, min, max float64) *FlagValidator {
	if value < min || value > max {
		v.errors = append(v.errors, fmt.Sprintf("%s must be between %.4f and %.4f, got: %.4f", name, min, max, value))
	}
	return v
}

// ValidateInt validates an int flag value
func (v *FlagValidator) ValidateInt(name string, value int, min, max int) *FlagValidator {
	if value < min || value > max {
		v.errors = append(v.errors, fmt.Sprintf("%s must be between %d and %d, got: %d", name, min, max, value))
	}
	return v
}

// ValidateChoice validates that a string is one of the allowed choices
func (v *FlagValidator) ValidateChoice(name, value string, choices []string) *FlagValidator {
	for _, choice := range choices {
		if value == choice {
			return v
		}
	}
	v.errors = append(v.errors, fmt.Sprintf("%s must be one of [%s], got: %s", name, strings.Join(choices, ", "), value))
	return v
}

// ValidateFile validates that a file exists
func (v *FlagValidator) ValidateFile(name, path string, required bool) *FlagValidator {
	if path == "" {
		if required {
			v.errors = append(v.errors, fmt.Sprintf("%s is required", name))
		}
		return v
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		v.errors = append(v.errors, fmt.Sprintf("%s file does not exist: %s", name, path))
	}
	return v
}

// AddError adds a custom validation error
func (v *FlagValidator) AddError(message string) *FlagValidator {
	v.errors = append(v.errors, message)
	return v
}

// HasErrors returns true if there are validation errors
func (v *FlagValidator) HasErrors() bool {
	return len(v.errors) > 0
}

// GetError returns a formatted error message with all validation errors
func (v *FlagValidator) GetError() error {
	if len(v.errors) == 0 {
		return nil
	}

	if len(v.errors) == 1 {
		return fmt.Errorf("validation error: %s", v.errors[0])
	}

	return fmt.Errorf("validation errors:\n  - %s", strings.Join(v.errors, "\n  - "))
}

// UsageExample represents a usage example
type UsageExample struct {
	Command     string
	Description string
}

// FlagInfo contains information about a flag
type FlagInfo struct {
	Name  string
	Usage string
}

// UsageFormatter prints examples followed by the flags of fs grouped by section
type UsageFormatter struct {
	AppName        string
	AppDescription string
	Examples       []UsageExample

	groupOrder []string
	groups     map[string][]FlagInfo
}

// NewUsageFormatter creates a new usage formatter
func NewUsageFormatter(appName, description string) *UsageFormatter {
	return &UsageFormatter{
		AppName:        appName,
		AppDescription: description,
		groups:         make(map[string][]FlagInfo),
	}
}

// AddExample adds a usage example
func (u *UsageFormatter) AddExample(command, description string) *UsageFormatter {
	u.Examples = append(u.Examples, UsageExample{Command: command, Description: description})
	return u
}

// AddGroup lists the named flags of fs under group, in order
func (u *UsageFormatter) AddGroup(fs *flag.FlagSet, group string, names ...string) *UsageFormatter {
	if _, exists := u.groups[group]; !exists {
		u.groupOrder = append(u.groupOrder, group)
	}
	for _, name := range names {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		usage := f.Usage
		if f.DefValue != "" && f.DefValue != "false" {
			usage = fmt.Sprintf("%s (default: %s)", usage, f.DefValue)
		}
		u.groups[group] = append(u.groups[group], FlagInfo{Name: name, Usage: usage})
	}
	return u
}

// PrintUsage writes formatted usage information to w
func (u *UsageFormatter) PrintUsage(w io.Writer) {
	fmt.Fprintf(w, "%s - %s\n\n", u.AppName, u.AppDescription)
	fmt.Fprintf(w, "USAGE:\n  %s [OPTIONS]\n\n", u.AppName)

	if len(u.Examples) > 0 {
		fmt.Fprintf(w, "EXAMPLES:\n")
		for _, example := range u.Examples {
			fmt.Fprintf(w, "  # %s\n", example.Description)
			fmt.Fprintf(w, "  %s\n\n", example.Command)
		}
	}

	for _, group := range u.groupOrder {
		fmt.Fprintf(w, "%s:\n", strings.ToUpper(group))
		for _, f := range u.groups[group] {
			fmt.Fprintf(w, "  -%s\n        %s\n", f.Name, f.Usage)
		}
		fmt.Fprintln(w)
	}
}
