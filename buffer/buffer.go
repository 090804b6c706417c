package buffer

import (
	"github.com/neovim/go-client/nvim"
	"github.com/pkg/errors"

	"linediff/logger"
	"linediff/text"
	"linediff/types"
)

type Config struct {
	NsID   int
	Groups types.HighlightGroups
}

type NvimBuffer struct {
	client *nvim.Nvim // stored internally, set via SetClient
	config Config
}

func New(config Config) *NvimBuffer {
	return &NvimBuffer{config: config}
}

// SetClient stores the nvim client for all buffer operations
func (b *NvimBuffer) SetClient(n *nvim.Nvim) {
	b.client = n
}

// Lines reads the content of every buffer in a single round-trip. Buffer 0
// is the current buffer.
func (b *NvimBuffer) Lines(bufs ...int) ([][]string, error) {
	defer logger.Trace("buffer.Lines")()
	if b.client == nil {
		return nil, errors.New("nvim client not set")
	}

	batch := b.client.NewBatch()
	raw := make([][][]byte, len(bufs))
	for i, buf := range bufs {
		batch.BufferLines(nvim.Buffer(buf), 0, -1, false, &raw[i])
	}
	if err := batch.Execute(); err != nil {
		return nil, errors.Wrapf(err, "read lines of buffers %v", bufs)
	}

	result := make([][]string, len(bufs))
	for i, lines := range raw {
		result[i] = make([]string, len(lines))
		for j, line := range lines {
			result[i][j] = string(line)
		}
	}
	return result, nil
}

// highlightLua draws a list of highlights into one buffer. Entries without
// an end column highlight the whole line.
const highlightLua = `
local buf, ns, highlights = ...
for _, h in ipairs(highlights) do
	if h.col_end < 0 then
		vim.api.nvim_buf_set_extmark(buf, ns, h.line, 0, { line_hl_group = h.group, priority = 100 })
	else
		vim.api.nvim_buf_set_extmark(buf, ns, h.line, h.col_start, { end_col = h.col_end, hl_group = h.group, priority = 200 })
	end
end
`

// Highlight replaces the diff highlights of both buffers with the ones for
// result.
func (b *NvimBuffer) Highlight(originalBuf, modifiedBuf int, result *text.DiffResult, original, modified []string) error {
	defer logger.Trace("buffer.Highlight")()
	if b.client == nil {
		return errors.New("nvim client not set")
	}

	origHighlights, modHighlights := Highlights(result, original, modified, b.config.Groups)

	batch := b.client.NewBatch()
	b.clearNamespace(batch, originalBuf)
	b.clearNamespace(batch, modifiedBuf)
	batch.ExecLua(highlightLua, nil, originalBuf, b.config.NsID, luaHighlights(origHighlights))
	batch.ExecLua(highlightLua, nil, modifiedBuf, b.config.NsID, luaHighlights(modHighlights))
	if err := batch.Execute(); err != nil {
		return errors.Wrap(err, "apply highlights")
	}

	logger.WithFields(logger.Fields{
		"original": len(origHighlights),
		"modified": len(modHighlights),
	}).Debug("buffer: highlights applied")
	return nil
}

// Clear removes the diff highlights from the given buffers.
func (b *NvimBuffer) Clear(bufs ...int) error {
	if b.client == nil {
		return errors.New("nvim client not set")
	}
	batch := b.client.NewBatch()
	for _, buf := range bufs {
		b.clearNamespace(batch, buf)
	}
	return errors.Wrap(batch.Execute(), "clear highlights")
}

func (b *NvimBuffer) clearNamespace(batch *nvim.Batch, buf int) {
	batch.ClearBufferNamespace(nvim.Buffer(buf), b.config.NsID, 0, -1)
}

func luaHighlights(highlights []Highlight) []map[string]any {
	out := make([]map[string]any, len(highlights))
	for i, h := range highlights {
		out[i] = map[string]any{
			"group":     h.Group,
			"line":      h.Line,
			"col_start": h.ColStart,
			"col_end":   h.ColEnd,
		}
	}
	return out
}
