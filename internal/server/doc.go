// Package server implements the MCP (Model Context Protocol) server for the
// label renderer.
//
// The server speaks JSON-RPC 2.0 over stdio, one request per line, and
// exposes the rendering engine and its diagnostics as tools.
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Inputs:
//   - label_image_info: Master image metadata
//   - label_template_regions: Template regions resolved to pixels
//
// Fitting:
//   - label_classify_script: Script tag and script inventory of a text
//   - label_font_candidates: Candidate fonts for a script, with availability
//   - label_fit_text: Font and size for a text in a box
//
// Rendering:
//   - label_render: Render a template for a jurisdiction and write a PNG
//   - label_preview: Thumbnail of a master or rendered label
//
// Quality checks:
//   - label_diff: Per-region comparison of master and rendered label
//   - label_verify: OCR read-back of rendered regions
//
// # Documents
//
// Template and rule documents are JSON or YAML files. Tools take their paths
// as arguments and fall back to the configured documents; without a rule
// document the built-in demo rules are used.
//
// # Error Handling
//
// Tool failures are returned as JSON-RPC errors with code -32000 and the Go
// error string in data. Region-level problems never fail a render; they are
// reported in the render report instead.
package server
