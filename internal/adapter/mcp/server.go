// Package mcp exposes the editing session as MCP tools.
package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"resume-studio/internal/domain"
	"resume-studio/internal/editor"
	"resume-studio/internal/model"
	"resume-studio/internal/usecase"
)

const currentURI = "resume://current"

// Deps holds what the tools act on.
type Deps struct {
	Session  *usecase.Session
	Exporter *usecase.Exporter
	Version  string
}

// NewServer creates an MCP server with the resume tools and the current
// record resource registered.
func NewServer(deps Deps) *server.MCPServer {
	version := deps.Version
	if version == "" {
		version = "dev"
	}
	s := server.NewMCPServer(
		"resume-studio",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("resume-studio: read and lay out a single resume, then export it as PDF, DOCX, HTML or JSON."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("get_resume",
			mcp.WithDescription("Return the current resume record as JSON."),
		),
		getResume(deps),
	)

	s.AddTool(
		mcp.NewTool("toggle_section_break",
			mcp.WithDescription("Toggle the forced page break before a section."),
			mcp.WithString("section",
				mcp.Description("One of summary, skills, experience, projects, education, languages"),
				mcp.Required()),
		),
		toggleSectionBreak(deps),
	)

	s.AddTool(
		mcp.NewTool("toggle_role_break",
			mcp.WithDescription("Toggle the forced page break before one experience entry."),
			mcp.WithNumber("index", mcp.Description("Zero-based experience index"), mcp.Required()),
		),
		toggleRoleBreak(deps),
	)

	s.AddTool(
		mcp.NewTool("remove_role",
			mcp.WithDescription("Delete one experience entry; page breaks on later entries move with them."),
			mcp.WithNumber("index", mcp.Description("Zero-based experience index"), mcp.Required()),
		),
		removeRole(deps),
	)

	s.AddTool(
		mcp.NewTool("export",
			mcp.WithDescription("Render the resume in one format. Artifacts are published when a sink is configured and embedded otherwise."),
			mcp.WithString("format", mcp.Description("pdf, docx, html or json"), mcp.Required()),
		),
		export(deps),
	)

	s.AddResource(
		mcp.NewResource(
			currentURI,
			"Current Resume",
			mcp.WithResourceDescription("The live resume record as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		currentResource(deps),
	)

	return s
}

func getResume(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return recordResult(deps.Session.Current())
	}
}

func toggleSectionBreak(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("section")
		if err != nil {
			return mcpError("section is required"), nil
		}
		sec, err := model.ParseSection(name)
		if err != nil {
			return mcpError(err.Error()), nil
		}
		r := deps.Session.Apply(func(r model.Resume) model.Resume { return editor.ToggleSectionBreak(r, sec) })
		state := "off"
		if r.Layout.Breaks.Before.Get(sec) {
			state = "on"
		}
		return mcpText(fmt.Sprintf("Page break before %s is now %s", sec, state)), nil
	}
}

func toggleRoleBreak(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		i, res := roleIndex(deps, req)
		if res != nil {
			return res, nil
		}
		r := deps.Session.Apply(func(r model.Resume) model.Resume { return editor.ToggleExperienceBreak(r, i) })
		state := "off"
		if r.Layout.Breaks.BeforeExperience.Has(i) {
			state = "on"
		}
		return mcpText(fmt.Sprintf("Page break before role %d (%s) is now %s", i, r.Experience[i].Company, state)), nil
	}
}

func removeRole(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		i, res := roleIndex(deps, req)
		if res != nil {
			return res, nil
		}
		company := deps.Session.Current().Experience[i].Company
		r := deps.Session.Apply(func(r model.Resume) model.Resume { return editor.RemoveExperienceAt(r, i) })
		return mcpText(fmt.Sprintf("Removed role %d (%s); %d roles remain, breaks before %v",
			i, company, len(r.Experience), r.Layout.Breaks.BeforeExperience.Slice())), nil
	}
}

func export(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("format")
		if err != nil {
			return mcpError("format is required"), nil
		}
		f, err := domain.ParseFormat(name)
		if err != nil {
			return mcpError(err.Error()), nil
		}
		a, err := deps.Exporter.Export(ctx, deps.Session.Current(), f)
		if err != nil {
			return mcpError(fmt.Sprintf("export failed: %v", err)), nil
		}
		published, err := deps.Exporter.Publish(ctx, []domain.Artifact{a})
		if err != nil {
			return mcpError(fmt.Sprintf("publish failed: %v", err)), nil
		}
		a = published[0]

		meta, err := json.Marshal(a)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal artifact: %v", err)), nil
		}
		result := mcpText(string(meta))
		if a.Location == "" {
			result.Content = append(result.Content, mcp.NewEmbeddedResource(mcp.BlobResourceContents{
				URI:      "resume://export/" + a.FileName,
				MIMEType: a.ContentType,
				Blob:     base64.StdEncoding.EncodeToString(a.Data),
			}))
		}
		return result, nil
	}
}

func currentResource(deps Deps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		b, err := model.MarshalExchange(deps.Session.Current())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal resume: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      currentURI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func roleIndex(deps Deps, req mcp.CallToolRequest) (int, *mcp.CallToolResult) {
	i, err := req.RequireInt("index")
	if err != nil {
		return 0, mcpError("index is required")
	}
	if n := len(deps.Session.Current().Experience); i < 0 || i >= n {
		return 0, mcpError(fmt.Sprintf("index %d out of range (have %d roles)", i, n))
	}
	return i, nil
}

func recordResult(r model.Resume) (*mcp.CallToolResult, error) {
	b, err := model.MarshalExchange(r)
	if err != nil {
		return mcpError(fmt.Sprintf("failed to marshal resume: %v", err)), nil
	}
	return mcpText(string(b)), nil
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
