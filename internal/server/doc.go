// Package server implements the MCP (Model Context Protocol) server for image
// metadata steganography tools.
//
// This package provides a JSON-RPC 2.0 server that exposes the stego package
// through the MCP protocol, so MCP-compatible clients can hide, read, update
// and remove JSON metadata carried in the low bits of image pixels.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Basic Image Information:
//   - image_load: Load image, report format and metadata capacity
//
// Metadata Operations:
//   - stego_embed: Hide a JSON value in an image
//   - stego_extract: Read the hidden value
//   - stego_verify: Check for a metadata header
//   - stego_update: Merge fields into the hidden object
//   - stego_clear: Remove hidden metadata
//   - stego_copy: Copy hidden metadata between images
//   - stego_batch: Run one operation over many images
//
// Analysis Helpers:
//   - image_bit_plane: Render a bit plane
//   - image_distortion: Measure the change an embed caused
//
// Every codec tool accepts optional "channel" and "bit_plane" arguments.
// Omitted values fall back to the defaults the server was started with
// (see package config). Reading with a different selection than the one used
// for writing reports the metadata as absent.
//
// # Output Files
//
// Tools that modify an image never touch the source unless asked to. The
// result is written to output_path, or to the source path with overwrite, or
// to "<name>_embedded.png" beside the source. Output is always PNG or BMP.
//
// # Image Caching
//
// The server maintains an in-memory cache of loaded images keyed by path.
// Writing an image evicts its path so the next call reads the new file.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// Absent metadata is not an error; extract and verify report it with
// status "absent".
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := server.New(cfg).Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
