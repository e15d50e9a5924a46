package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalPolicy = `
community:        "testsub"
bot_user:         "test_bot"
config_wiki_page: "botconfig"

messages: {
	prompt_subject:  "please respond"
	prompt_body:     "answer for {{post}} required"
	retry_subject:   "try again"
	retry_body:      "that was not enough"
	timeout_subject: "too late"
	timeout_body:    "the window has passed"
	sticky_comment:  "the author said:\n\n> {{answer}}"
}
`

func TestCompile_Minimal(t *testing.T) {
	p, err := Compile(minimalPolicy)
	require.NoError(t, err)

	assert.Equal(t, "testsub", p.Community)
	assert.Equal(t, "test_bot", p.BotUser)
	assert.Equal(t, "botconfig", p.ConfigWikiPage)
	assert.Equal(t, "please respond", p.Messages.PromptSubject)
	assert.Equal(t, "that was not enough", p.Messages.RetryBody)
}

func TestDefault(t *testing.T) {
	p, err := Default()
	require.NoError(t, err)

	assert.NotEmpty(t, p.Community)
	assert.NotEmpty(t, p.BotUser)
	assert.NotEmpty(t, p.ConfigWikiPage)
	assert.Contains(t, p.Messages.PromptBody, "{{post}}")
	assert.Contains(t, p.Messages.StickyComment, "{{answer}}")
}

func TestCompile_MissingField(t *testing.T) {
	src := `
community: "testsub"
bot_user:  "test_bot"
`
	_, err := Compile(src)
	require.Error(t, err)
}

func TestCompile_EmptyStringRejected(t *testing.T) {
	src := minimalPolicy + "\ncommunity: \"\"\n"

	_, err := Compile(src)
	require.Error(t, err)
}

func TestCompile_WrongType(t *testing.T) {
	src := minimalPolicy + "\nconfig_wiki_page: 42\n"

	_, err := Compile(src)
	require.Error(t, err)
}

func TestCompile_SyntaxError(t *testing.T) {
	_, err := Compile(`community: "unterminated`)
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.cue")
	require.NoError(t, os.WriteFile(path, []byte(minimalPolicy), 0o644))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "testsub", p.Community)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.cue"))
	require.Error(t, err)
}

func TestRenderPrompt(t *testing.T) {
	p, err := Compile(minimalPolicy)
	require.NoError(t, err)

	body := p.RenderPrompt("/r/testsub/comments/s1")

	assert.Equal(t, "answer for /r/testsub/comments/s1 required", body)
	assert.NotContains(t, body, "{{post}}")
}

func TestRenderSticky(t *testing.T) {
	p, err := Compile(minimalPolicy)
	require.NoError(t, err)

	body := p.RenderSticky("I should have asked first.")

	assert.Contains(t, body, "> I should have asked first.")
	assert.NotContains(t, body, "{{answer}}")
}

// The rendered default texts are pinned as goldens: they are the exact
// words users see, and an accidental edit to the embedded policy should
// fail loudly.
func TestRenderDefaults_Golden(t *testing.T) {
	p, err := Default()
	require.NoError(t, err)

	g := goldie.New(t, goldie.WithNameSuffix(".golden"))

	g.Assert(t, "default_prompt", []byte(p.RenderPrompt("https://example.com/r/sub/comments/abc123")))
	g.Assert(t, "default_sticky", []byte(p.RenderSticky("I took the last slice without asking anyone.")))
}
