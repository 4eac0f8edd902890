package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/image-stego-mcp/internal/imaging"
	"github.com/ironsheep/image-stego-mcp/internal/metadata"
	"github.com/ironsheep/image-stego-mcp/internal/pixel"
	"github.com/ironsheep/image-stego-mcp/internal/stego"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "stego_embed", "image_load").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	s.debugf("tools/call %s", params.Name)
	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.debugf("tool %s failed (%s): %v", params.Name, stego.KindOf(err), err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Resolves channel and bit plane against the server defaults
//  3. Loads images from cache as needed
//  4. Calls the appropriate stego/imaging function
//  5. Saves modified images and returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)

	// Metadata Operations
	case "stego_embed":
		return s.handleStegoEmbed(args)
	case "stego_extract":
		return s.handleStegoExtract(args)
	case "stego_verify":
		return s.handleStegoVerify(args)
	case "stego_update":
		return s.handleStegoUpdate(args)
	case "stego_clear":
		return s.handleStegoClear(args)
	case "stego_copy":
		return s.handleStegoCopy(args)
	case "stego_batch":
		return s.handleStegoBatch(args)

	// Analysis Helpers
	case "image_bit_plane":
		return s.handleImageBitPlane(args)
	case "image_sample_bits":
		return s.handleImageSampleBits(args)
	case "image_distortion":
		return s.handleImageDistortion(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Argument helpers ===

// selectionArgs carries the channel and bit plane accepted by every codec tool.
type selectionArgs struct {
	Channel  string `json:"channel"`
	BitPlane *int   `json:"bit_plane"`
}

// options resolves the selection against the server defaults.
func (s *Server) options(a selectionArgs) (stego.Options, error) {
	opts := s.cfg.Options
	if a.Channel != "" {
		c, err := pixel.ParseChannel(a.Channel)
		if err != nil {
			return opts, err
		}
		opts.Channel = c
	}
	if a.BitPlane != nil {
		if *a.BitPlane < 0 || *a.BitPlane > 7 {
			return opts, fmt.Errorf("%w: %d", pixel.ErrInvalidPlane, *a.BitPlane)
		}
		opts.Plane = pixel.Plane(*a.BitPlane)
	}
	return opts, opts.Validate()
}

// outputArgs carries the destination arguments of write tools.
type outputArgs struct {
	OutputPath string `json:"output_path"`
	Overwrite  bool   `json:"overwrite"`
}

// parseMetadata decodes a metadata argument into the codec's value form.
func parseMetadata(raw json.RawMessage) (any, error) {
	if len(raw) == 0 {
		return nil, errors.New("metadata is required")
	}
	v, err := metadata.Unmarshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid metadata argument: %v", stego.ErrEncoding, err)
	}
	return v, nil
}

// parsePatch decodes a metadata argument that must be a JSON object.
func parsePatch(raw json.RawMessage) (map[string]any, error) {
	v, err := parseMetadata(raw)
	if err != nil {
		return nil, err
	}
	patch, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: metadata must be a JSON object, got %T", stego.ErrEncoding, v)
	}
	return patch, nil
}

// writeResult is returned by every tool that produces an image.
type writeResult struct {
	Status     stego.Status `json:"status"`
	OutputPath string       `json:"output_path,omitempty"`
	BitsUsed   int          `json:"bits_used"`
	Metadata   any          `json:"metadata,omitempty"`
}

// store saves r.Grid according to the output arguments and describes the write.
func (s *Server) store(src string, out outputArgs, r *stego.Result) (*writeResult, error) {
	path := imaging.OutputPath(src, out.OutputPath, out.Overwrite)
	if err := s.cache.SaveGrid(path, r.Grid); err != nil {
		return nil, err
	}
	s.debugf("wrote %s (%s, %d bits)", path, r.Status, r.BitsUsed)
	return &writeResult{
		Status:     r.Status,
		OutputPath: path,
		BitsUsed:   r.BitsUsed,
		Metadata:   r.Metadata,
	}, nil
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

// === Metadata Operation Handlers ===

type stegoEmbedArgs struct {
	selectionArgs
	outputArgs
	Path     string          `json:"path"`
	Metadata json.RawMessage `json:"metadata"`
}

func (s *Server) handleStegoEmbed(args json.RawMessage) (interface{}, error) {
	var a stegoEmbedArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	opts, err := s.options(a.selectionArgs)
	if err != nil {
		return nil, err
	}
	meta, err := parseMetadata(a.Metadata)
	if err != nil {
		return nil, err
	}

	g, err := s.cache.LoadGrid(a.Path)
	if err != nil {
		return nil, err
	}
	r, err := stego.Embed(g, meta, opts)
	if err != nil {
		return nil, err
	}
	return s.store(a.Path, a.outputArgs, r)
}

type stegoReadArgs struct {
	selectionArgs
	Path string `json:"path"`
}

func (s *Server) handleStegoExtract(args json.RawMessage) (interface{}, error) {
	var a stegoReadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	opts, err := s.options(a.selectionArgs)
	if err != nil {
		return nil, err
	}

	g, err := s.cache.LoadGrid(a.Path)
	if err != nil {
		return nil, err
	}
	return stego.Extract(g, opts)
}

func (s *Server) handleStegoVerify(args json.RawMessage) (interface{}, error) {
	var a stegoReadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	opts, err := s.options(a.selectionArgs)
	if err != nil {
		return nil, err
	}

	g, err := s.cache.LoadGrid(a.Path)
	if err != nil {
		return nil, err
	}
	r, err := stego.Verify(g, opts)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"present": r.Present(),
		"status":  r.Status,
	}, nil
}

func (s *Server) handleStegoUpdate(args json.RawMessage) (interface{}, error) {
	var a stegoEmbedArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	opts, err := s.options(a.selectionArgs)
	if err != nil {
		return nil, err
	}
	patch, err := parsePatch(a.Metadata)
	if err != nil {
		return nil, err
	}

	g, err := s.cache.LoadGrid(a.Path)
	if err != nil {
		return nil, err
	}
	r, err := stego.Update(g, patch, opts)
	if err != nil {
		return nil, err
	}
	return s.store(a.Path, a.outputArgs, r)
}

type stegoClearArgs struct {
	selectionArgs
	outputArgs
	Path string `json:"path"`
}

func (s *Server) handleStegoClear(args json.RawMessage) (interface{}, error) {
	var a stegoClearArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	opts, err := s.options(a.selectionArgs)
	if err != nil {
		return nil, err
	}

	g, err := s.cache.LoadGrid(a.Path)
	if err != nil {
		return nil, err
	}
	r, err := stego.Clear(g, opts)
	if err != nil {
		return nil, err
	}
	if r.Status == stego.StatusAbsent {
		// Nothing to remove; leave the file system alone.
		return &writeResult{Status: r.Status}, nil
	}
	return s.store(a.Path, a.outputArgs, r)
}

type stegoCopyArgs struct {
	selectionArgs
	outputArgs
	SourcePath      string `json:"source_path"`
	DestinationPath string `json:"destination_path"`
}

func (s *Server) handleStegoCopy(args json.RawMessage) (interface{}, error) {
	var a stegoCopyArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	opts, err := s.options(a.selectionArgs)
	if err != nil {
		return nil, err
	}

	src, err := s.cache.LoadGrid(a.SourcePath)
	if err != nil {
		return nil, err
	}
	dst, err := s.cache.LoadGrid(a.DestinationPath)
	if err != nil {
		return nil, err
	}
	r, err := stego.Copy(src, dst, opts)
	if err != nil {
		return nil, err
	}
	if r.Status == stego.StatusAbsent {
		return &writeResult{Status: r.Status}, nil
	}
	return s.store(a.DestinationPath, a.outputArgs, r)
}

// === Batch Handler ===

type stegoBatchArgs struct {
	selectionArgs
	Paths     []string        `json:"paths"`
	Operation string          `json:"operation"`
	Metadata  json.RawMessage `json:"metadata"`
	OutputDir string          `json:"output_dir"`
	Workers   int             `json:"workers"`
}

// batchItemResult is the per-path entry of a stego_batch response.
type batchItemResult struct {
	Path       string          `json:"path"`
	OK         bool            `json:"ok"`
	Status     *stego.Status   `json:"status,omitempty"`
	Kind       stego.ErrorKind `json:"kind"`
	Error      string          `json:"error,omitempty"`
	OutputPath string          `json:"output_path,omitempty"`
	Metadata   any             `json:"metadata,omitempty"`
}

// batchOperation builds the operation for a stego_batch call and reports
// whether it produces images that must be saved.
func batchOperation(a stegoBatchArgs, opts stego.Options) (stego.Operation, bool, error) {
	switch a.Operation {
	case "embed":
		meta, err := parseMetadata(a.Metadata)
		if err != nil {
			return nil, false, err
		}
		return stego.EmbedOp(meta, opts), true, nil
	case "update":
		patch, err := parsePatch(a.Metadata)
		if err != nil {
			return nil, false, err
		}
		return stego.UpdateOp(patch, opts), true, nil
	case "clear":
		return stego.ClearOp(opts), true, nil
	case "verify":
		return stego.VerifyOp(opts), false, nil
	case "extract":
		return stego.ExtractOp(opts), false, nil
	default:
		return nil, false, fmt.Errorf("unknown batch operation %q (use embed, update, clear, verify or extract)", a.Operation)
	}
}

func (s *Server) handleStegoBatch(args json.RawMessage) (interface{}, error) {
	var a stegoBatchArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	opts, err := s.options(a.selectionArgs)
	if err != nil {
		return nil, err
	}
	op, writes, err := batchOperation(a, opts)
	if err != nil {
		return nil, err
	}

	batchOpts := stego.BatchOptions{Workers: s.cfg.Workers}
	if a.Workers > 0 {
		batchOpts.Workers = a.Workers
	}

	if writes {
		if a.OutputDir == "" {
			return nil, fmt.Errorf("output_dir is required for %s", a.Operation)
		}
		// Two inputs sharing a file name would overwrite each other's output.
		seen := make(map[string]string, len(a.Paths))
		for _, p := range a.Paths {
			out := imaging.BatchOutputPath(a.OutputDir, p)
			if prev, ok := seen[out]; ok && prev != p {
				return nil, fmt.Errorf("%s and %s would both be written to %s", prev, p, out)
			}
			seen[out] = p
		}
		batchOpts.Store = func(id string, r *stego.Result) error {
			if r.Grid == nil || r.Status == stego.StatusAbsent {
				return nil
			}
			return s.cache.SaveGrid(imaging.BatchOutputPath(a.OutputDir, id), r.Grid)
		}
	}

	items := make([]stego.Item, 0, len(a.Paths))
	for _, p := range a.Paths {
		path := p
		items = append(items, stego.Item{
			ID:   path,
			Load: func() (*pixel.Grid, error) { return s.cache.LoadGrid(path) },
		})
	}

	s.debugf("batch %s over %d images", a.Operation, len(items))
	outcomes := stego.Run(context.Background(), items, op, batchOpts)

	results := make([]batchItemResult, 0, len(outcomes))
	failures := 0
	done := make(map[string]bool, len(outcomes))
	for _, p := range a.Paths {
		if done[p] {
			continue
		}
		done[p] = true

		o := outcomes[p]
		s.debugf("batch %s: %s kind=%s", a.Operation, p, o.Kind)
		item := batchItemResult{Path: p, OK: o.OK(), Kind: o.Kind}
		if !o.OK() {
			failures++
			item.Error = o.Err.Error()
			results = append(results, item)
			continue
		}
		status := o.Result.Status
		item.Status = &status
		item.Metadata = o.Result.Metadata
		if status == stego.StatusFound && item.Metadata == nil {
			item.Metadata = json.RawMessage("null")
		}
		if writes && o.Result.Grid != nil && status != stego.StatusAbsent {
			item.OutputPath = imaging.BatchOutputPath(a.OutputDir, p)
		}
		results = append(results, item)
	}

	return map[string]interface{}{
		"operation": a.Operation,
		"total":     len(results),
		"succeeded": len(results) - failures,
		"failed":    failures,
		"results":   results,
	}, nil
}

// === Analysis Helper Handlers ===

type imageBitPlaneArgs struct {
	selectionArgs
	Path  string  `json:"path"`
	Scale float64 `json:"scale"`
}

func (s *Server) handleImageBitPlane(args json.RawMessage) (interface{}, error) {
	var a imageBitPlaneArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	opts, err := s.options(a.selectionArgs)
	if err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}

	g, err := s.cache.LoadGrid(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.BitPlaneView(g, opts.Channel, opts.Plane, a.Scale)
}

type imageSampleBitsArgs struct {
	selectionArgs
	Path   string `json:"path"`
	Points []struct {
		X     int    `json:"x"`
		Y     int    `json:"y"`
		Label string `json:"label"`
	} `json:"points"`
}

func (s *Server) handleImageSampleBits(args json.RawMessage) (interface{}, error) {
	var a imageSampleBitsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	opts, err := s.options(a.selectionArgs)
	if err != nil {
		return nil, err
	}

	g, err := s.cache.LoadGrid(a.Path)
	if err != nil {
		return nil, err
	}
	points := make([]imaging.LabeledPoint, len(a.Points))
	for i, p := range a.Points {
		points[i] = imaging.LabeledPoint{X: p.X, Y: p.Y, Label: p.Label}
	}
	return imaging.SamplePixels(g, points, opts.Channel, opts.Plane)
}

type imageDistortionArgs struct {
	OriginalPath string `json:"original_path"`
	ModifiedPath string `json:"modified_path"`
}

func (s *Server) handleImageDistortion(args json.RawMessage) (interface{}, error) {
	var a imageDistortionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	original, err := s.cache.LoadGrid(a.OriginalPath)
	if err != nil {
		return nil, err
	}
	modified, err := s.cache.LoadGrid(a.ModifiedPath)
	if err != nil {
		return nil, err
	}
	return imaging.MeasureDistortion(original, modified)
}
