package policy

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

//go:embed schema.cue
var schemaCUE string

//go:embed default_policy.cue
var defaultPolicyCUE string

// Load reads, validates, and compiles a policy document from disk.
func Load(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy file: %w", err)
	}
	return Compile(string(data))
}

// Default compiles the embedded policy document. Used when no policy
// file is configured; also keeps tests hermetic.
func Default() (*Policy, error) {
	return Compile(defaultPolicyCUE)
}

// Compile parses a CUE policy document into a Policy.
//
// The document is unified with the embedded schema before extraction, so
// missing or mistyped fields surface as compile errors with positions
// rather than as zero values deep in the workflow.
func Compile(src string) (*Policy, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE)
	if err := schema.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	doc := ctx.CompileString(src)
	if err := doc.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	unified := schema.Unify(doc)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	p := &Policy{}
	fields := []struct {
		path string
		dst  *string
	}{
		{"community", &p.Community},
		{"bot_user", &p.BotUser},
		{"config_wiki_page", &p.ConfigWikiPage},
		{"messages.prompt_subject", &p.Messages.PromptSubject},
		{"messages.prompt_body", &p.Messages.PromptBody},
		{"messages.retry_subject", &p.Messages.RetrySubject},
		{"messages.retry_body", &p.Messages.RetryBody},
		{"messages.timeout_subject", &p.Messages.TimeoutSubject},
		{"messages.timeout_body", &p.Messages.TimeoutBody},
		{"messages.sticky_comment", &p.Messages.StickyComment},
	}
	for _, f := range fields {
		val := unified.LookupPath(cue.ParsePath(f.path))
		if !val.Exists() {
			return nil, &CompileError{
				Field:   f.path,
				Message: "field is required",
				Pos:     unified.Pos(),
			}
		}
		s, err := val.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		*f.dst = s
	}

	return p, nil
}

// CompileError is a policy compilation failure with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}
	return firstErr
}
