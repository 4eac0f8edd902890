package server

import "github.com/ironsheep/image-stego-mcp/internal/imaging"

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// pathProperty is the schema for an image path argument.
func pathProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

// withSelection adds the channel and bit_plane arguments shared by every
// codec tool.
func withSelection(props map[string]interface{}) map[string]interface{} {
	props["channel"] = map[string]interface{}{
		"type":        "string",
		"enum":        []string{"all", "red", "green", "blue"},
		"description": "Carrier channel. Must match the channel used when the metadata was embedded. Default: server setting (normally all)",
	}
	props["bit_plane"] = map[string]interface{}{
		"type":        "integer",
		"minimum":     0,
		"maximum":     7,
		"description": "Bit within each 8-bit sample (0 = least significant). Must match the plane used when embedding. Default: server setting (normally 0)",
	}
	return props
}

// withOutput adds the output_path and overwrite arguments of write tools.
func withOutput(props map[string]interface{}) map[string]interface{} {
	props["output_path"] = map[string]interface{}{
		"type":        "string",
		"description": "Where to write the modified image. Default: <name>_embedded.png next to the source. Lossy extensions are replaced by .png",
	}
	props["overwrite"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Write back to the source path when output_path is not given. Default false",
		"default":     false,
	}
	return props
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and how many bytes of metadata it can carry per channel selection.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the image file"),
				},
				"required": []string{"path"},
			},
		},

		// Metadata Operations
		{
			Name:        "stego_embed",
			Description: "Hide a JSON metadata value in the pixel bits of an image and write the result as a lossless image. Replaces any metadata already embedded.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withOutput(withSelection(map[string]interface{}{
					"path": pathProperty("Absolute path to the source image"),
					"metadata": map[string]interface{}{
						"description": "Any JSON value to embed, typically an object such as {\"author\": \"Jane\"}",
					},
				})),
				"required": []string{"path", "metadata"},
			},
		},
		{
			Name:        "stego_extract",
			Description: "Read the metadata embedded in an image. Returns status \"absent\" when the image carries none; fails when metadata is present but corrupt.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withSelection(map[string]interface{}{
					"path": pathProperty("Absolute path to the image file"),
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "stego_verify",
			Description: "Quickly check whether an image carries an embedded metadata header. Only the header magic is checked, not whether the payload decodes; use stego_extract for that.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withSelection(map[string]interface{}{
					"path": pathProperty("Absolute path to the image file"),
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "stego_update",
			Description: "Merge fields into the embedded metadata object. Given keys replace existing ones, other keys are kept. An image without metadata starts from an empty object.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withOutput(withSelection(map[string]interface{}{
					"path": pathProperty("Absolute path to the source image"),
					"metadata": map[string]interface{}{
						"type":        "object",
						"description": "Fields to add or replace",
					},
				})),
				"required": []string{"path", "metadata"},
			},
		},
		{
			Name:        "stego_clear",
			Description: "Remove embedded metadata by zeroing the carrier bits it occupies.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withOutput(withSelection(map[string]interface{}{
					"path": pathProperty("Absolute path to the source image"),
				})),
				"required": []string{"path"},
			},
		},
		{
			Name:        "stego_copy",
			Description: "Copy the metadata embedded in one image into another image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withOutput(withSelection(map[string]interface{}{
					"source_path":      pathProperty("Image to read metadata from"),
					"destination_path": pathProperty("Image to write metadata into"),
				})),
				"required": []string{"source_path", "destination_path"},
			},
		},
		{
			Name:        "stego_batch",
			Description: "Apply one metadata operation to many images. Every path gets its own outcome; one failure does not stop the others.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withSelection(map[string]interface{}{
					"paths": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Absolute paths of the images to process",
					},
					"operation": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"embed", "update", "clear", "verify", "extract"},
						"description": "Operation applied to every image",
					},
					"metadata": map[string]interface{}{
						"description": "Value for embed, or object of fields for update",
					},
					"output_dir": map[string]interface{}{
						"type":        "string",
						"description": "Directory for modified images (required for embed, update and clear). Files keep their names with a lossless extension",
					},
					"workers": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum images processed at once. Default: server setting",
					},
				}),
				"required": []string{"paths", "operation"},
			},
		},

		// Analysis Helpers
		{
			Name:        "image_bit_plane",
			Description: "Render one bit plane of an image as a black and white PNG, to see where embedded data lives.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withSelection(map[string]interface{}{
					"path": pathProperty("Absolute path to the image file"),
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor (e.g., 4.0 to enlarge small images). Default 1.0",
						"default":     1.0,
						"maximum":     imaging.MaxBitPlaneScale,
					},
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_sample_bits",
			Description: "Sample pixels and show their colour, the selected bit plane of each channel, and which carrier bits they hold.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withSelection(map[string]interface{}{
					"path": pathProperty("Absolute path to the image file"),
					"points": map[string]interface{}{
						"type": "array",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"x":     map[string]interface{}{"type": "integer"},
								"y":     map[string]interface{}{"type": "integer"},
								"label": map[string]interface{}{"type": "string"},
							},
							"required": []string{"x", "y"},
						},
						"description": "Pixels to sample, e.g. [{\"x\": 0, \"y\": 0, \"label\": \"first\"}]",
					},
				}),
				"required": []string{"path", "points"},
			},
		},
		{
			Name:        "image_distortion",
			Description: "Measure how much a modified image differs from its original: PSNR, changed samples and CIE Lab colour distance.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"original_path": pathProperty("Absolute path to the original image"),
					"modified_path": pathProperty("Absolute path to the modified image"),
				},
				"required": []string{"original_path", "modified_path"},
			},
		},
	}
}

// handleToolsList returns the available tool definitions
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
