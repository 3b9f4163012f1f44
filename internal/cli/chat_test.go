package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/soyeahso/botline/internal/config"
	"github.com/soyeahso/botline/internal/directline"
)

func msgFrom(id, name, text string) directline.Activity {
	return directline.Activity{
		Type: directline.ActivityMessage,
		ID:   id,
		Text: text,
		From: &directline.ChannelAccount{Name: name},
	}
}

func TestPrinterPrintsEachMessageOnce(t *testing.T) {
	var buf bytes.Buffer
	p := newPrinter(&buf)

	// snapshots arrive newest first, the way the timeline hands them out
	p.printNew([]directline.Activity{msgFrom("2", "bot", "two"), msgFrom("1", "me", "one")})
	p.printNew([]directline.Activity{msgFrom("3", "bot", "three"), msgFrom("2", "bot", "two"), msgFrom("1", "me", "one")})

	assert.Equal(t, "me: one\nbot: two\nbot: three\n", buf.String())
}

func TestPrinterHandlesMidListInsertion(t *testing.T) {
	var buf bytes.Buffer
	p := newPrinter(&buf)

	p.printNew([]directline.Activity{msgFrom("9", "bot", "newest"), msgFrom("1", "me", "oldest")})
	// a catch-up batch lands between the two existing entries
	p.printNew([]directline.Activity{msgFrom("9", "bot", "newest"), msgFrom("5", "bot", "middle"), msgFrom("1", "me", "oldest")})

	assert.Equal(t, "me: oldest\nbot: newest\nbot: middle\n", buf.String())
}

func TestPrinterFallsBackToUserID(t *testing.T) {
	var buf bytes.Buffer
	p := newPrinter(&buf)

	a := msgFrom("1", "", "hi")
	a.From.ID = "u-1"
	p.printNew([]directline.Activity{a})

	assert.Equal(t, "u-1: hi\n", buf.String())
}

func TestPrinterReset(t *testing.T) {
	var buf bytes.Buffer
	p := newPrinter(&buf)

	p.printNew([]directline.Activity{msgFrom("1", "me", "hi")})
	p.reset()
	p.printNew([]directline.Activity{msgFrom("1", "me", "hi")})

	assert.Equal(t, "me: hi\nme: hi\n", buf.String())
}

func TestResolveLogLevel(t *testing.T) {
	cfg := config.Defaults()
	cfg.Logging.Level = "debug"

	assert.Equal(t, "warn", resolveLogLevel("warn", cfg), "flag wins")
	assert.Equal(t, "debug", resolveLogLevel("", cfg), "configured level is the fallback")

	cfg.Logging.Level = ""
	assert.Equal(t, "info", resolveLogLevel("", cfg))
}
