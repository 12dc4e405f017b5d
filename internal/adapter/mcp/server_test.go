package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-studio/internal/adapter/repository"
	"resume-studio/internal/domain"
	"resume-studio/internal/model"
	"resume-studio/internal/usecase"
)

type pdfStub struct{}

func (pdfStub) RenderHTMLToPDF(context.Context, string) ([]byte, error) {
	return []byte("%PDF-1.7"), nil
}

type sinkStub struct{ got []domain.Artifact }

func (s *sinkStub) Put(_ context.Context, a domain.Artifact) (string, error) {
	s.got = append(s.got, a)
	return "/tmp/out/" + a.FileName, nil
}

func newTestDeps(t *testing.T, opts ...usecase.ExporterOption) Deps {
	t.Helper()
	s := usecase.NewSession(repository.NewMemoryStore(), usecase.WithDebounce(time.Hour))
	t.Cleanup(s.Close)
	opts = append([]usecase.ExporterOption{usecase.WithPageCounter(func([]byte) (int, error) { return 1, nil })}, opts...)
	return Deps{Session: s, Exporter: usecase.NewExporter(pdfStub{}, opts...)}
}

func call(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func toolText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	tc, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected TextContent, got %T", result.Content[0])
	return tc.Text
}

func TestNewServer(t *testing.T) {
	assert.NotNil(t, NewServer(newTestDeps(t)))
}

func TestGetResume(t *testing.T) {
	deps := newTestDeps(t)
	res, err := getResume(deps)(context.Background(), call("get_resume", nil))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var r model.Resume
	require.NoError(t, json.Unmarshal([]byte(toolText(t, res)), &r))
	assert.Equal(t, model.Default(), r)
}

func TestToggleSectionBreak(t *testing.T) {
	deps := newTestDeps(t)
	h := toggleSectionBreak(deps)

	res, err := h(context.Background(), call("toggle_section_break", map[string]interface{}{"section": "skills"}))
	require.NoError(t, err)
	assert.Equal(t, "Page break before skills is now on", toolText(t, res))
	assert.True(t, deps.Session.Current().Layout.Breaks.Before.Skills)

	res, _ = h(context.Background(), call("toggle_section_break", map[string]interface{}{"section": "skills"}))
	assert.Equal(t, "Page break before skills is now off", toolText(t, res))

	res, _ = h(context.Background(), call("toggle_section_break", map[string]interface{}{"section": "hobbies"}))
	assert.True(t, res.IsError)

	res, _ = h(context.Background(), call("toggle_section_break", nil))
	assert.True(t, res.IsError)
}

func TestToggleRoleBreak(t *testing.T) {
	deps := newTestDeps(t)
	h := toggleRoleBreak(deps)

	res, err := h(context.Background(), call("toggle_role_break", map[string]interface{}{"index": float64(1)}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, toolText(t, res), "Contoso Logistics")
	assert.Equal(t, model.IndexSet{1}, deps.Session.Current().Layout.Breaks.BeforeExperience)

	res, _ = h(context.Background(), call("toggle_role_break", map[string]interface{}{"index": float64(5)}))
	assert.True(t, res.IsError)
	assert.Contains(t, toolText(t, res), "out of range")
}

func TestRemoveRole_ReindexesBreaks(t *testing.T) {
	deps := newTestDeps(t)
	toggleRoleBreak(deps)(context.Background(), call("toggle_role_break", map[string]interface{}{"index": float64(1)}))

	res, err := removeRole(deps)(context.Background(), call("remove_role", map[string]interface{}{"index": float64(0)}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, toolText(t, res), "Northwind Payments")

	cur := deps.Session.Current()
	require.Len(t, cur.Experience, 1)
	assert.Equal(t, model.IndexSet{0}, cur.Layout.Breaks.BeforeExperience)
}

func TestExport_EmbedsWithoutSink(t *testing.T) {
	deps := newTestDeps(t)
	res, err := export(deps)(context.Background(), call("export", map[string]interface{}{"format": "json"}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Len(t, res.Content, 2)

	var meta map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(toolText(t, res)), &meta))
	assert.Equal(t, "Jordan_Rivera.json", meta["file_name"])
	assert.Nil(t, meta["location"])
}

func TestExport_Publishes(t *testing.T) {
	sink := &sinkStub{}
	deps := newTestDeps(t, usecase.WithSink(sink))
	res, err := export(deps)(context.Background(), call("export", map[string]interface{}{"format": "pdf"}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Len(t, res.Content, 1)
	assert.Contains(t, toolText(t, res), "/tmp/out/Jordan_Rivera.pdf")
	require.Len(t, sink.got, 1)
	assert.Equal(t, domain.FormatPDF, sink.got[0].Format)
}

func TestExport_UnknownFormat(t *testing.T) {
	res, err := export(newTestDeps(t))(context.Background(), call("export", map[string]interface{}{"format": "rtf"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestCurrentResource(t *testing.T) {
	deps := newTestDeps(t)
	contents, err := currentResource(deps)(context.Background(), mcp.ReadResourceRequest{
		Params: mcp.ReadResourceParams{URI: currentURI},
	})
	require.NoError(t, err)
	require.Len(t, contents, 1)
	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Contains(t, text.Text, `"name": "Jordan Rivera"`)
}
