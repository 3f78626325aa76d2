// Package api provides HTTP API endpoints for the SDN server.
package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	logging "github.com/ipfs/go-log/v2"

	"github.com/spacedatanetwork/sdn-server/internal/xtce/codec"
	"github.com/spacedatanetwork/sdn-server/internal/xtce/model"
	"github.com/spacedatanetwork/sdn-server/internal/xtceloader"
)

var log = logging.Logger("sdn-api")

// XTCEHandler handles XTCE XML ingestion, schema conversion, and packet/
// command decode+encode over HTTP.
type XTCEHandler struct {
	converter *XTCEConverter
	mu        sync.RWMutex
}

// NewXTCEHandler creates a new XTCE handler.
func NewXTCEHandler() *XTCEHandler {
	return &XTCEHandler{
		converter: NewXTCEConverter(),
	}
}

// RegisterRoutes registers the XTCE API routes.
func (h *XTCEHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/xtce/convert", h.ServeHTTP)
	mux.HandleFunc("/api/v1/xtce/decode", h.handleDecodePacket)
	mux.HandleFunc("/api/v1/xtce/encode", h.handleEncodePacket)
}

// ServeHTTP handles HTTP requests for XTCE ingestion and schema conversion.
func (h *XTCEHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleConvert(w, r)
	case http.MethodGet:
		h.handleInfo(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleConvert handles POST requests to convert XTCE to JSON Schema.
func (h *XTCEHandler) handleConvert(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 10*1024*1024)) // 10MB max
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to read request body: %v", err), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	options := ConversionOptions{
		Namespace:        r.URL.Query().Get("namespace"),
		SchemaID:         r.URL.Query().Get("schema_id"),
		IncludeTelemetry: r.URL.Query().Get("telemetry") != "false",
		IncludeCommands:  r.URL.Query().Get("commands") != "false",
		GenerateEnums:    r.URL.Query().Get("enums") != "false",
	}

	result, err := h.converter.Convert(r.Context(), string(body), options)
	if err != nil {
		http.Error(w, fmt.Sprintf("Conversion failed: %v", err), http.StatusBadRequest)
		return
	}

	accept := r.Header.Get("Accept")
	switch {
	case strings.Contains(accept, "application/x-flatbuffers"):
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(result.FlatBufferSchema))
	case strings.Contains(accept, "text/plain"):
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintf(w, "=== JSON Schema ===\n%s\n\n=== FlatBuffer Schema ===\n%s\n",
			result.JSONSchemaString, result.FlatBufferSchema)
	default:
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(result.JSONSchemaString))
	}

	log.Infof("Converted XTCE document: %s (%d parameters, %d command arguments)",
		result.Name, result.TelemetryCount, result.CommandCount)
}

// handleInfo returns information about the API.
func (h *XTCEHandler) handleInfo(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"name":        "XTCE Ingestion API",
		"version":     "1.0.0",
		"description": "Convert XTCE XML to JSON Schema with x-flatbuffer annotations, and decode/encode packets and commands against a loaded XTCE document",
		"endpoints": map[string]interface{}{
			"POST /api/v1/xtce/convert": map[string]interface{}{
				"description":  "Convert XTCE XML to JSON Schema",
				"content_type": "application/xml or text/xml",
				"parameters": map[string]string{
					"namespace": "FlatBuffer namespace (optional)",
					"schema_id": "JSON Schema $id (optional)",
					"telemetry": "Include telemetry parameters (default: true)",
					"commands":  "Include command definitions (default: true)",
					"enums":     "Generate FlatBuffer enums (default: true)",
				},
				"accept": map[string]string{
					"application/json":          "Returns JSON Schema (default)",
					"application/x-flatbuffers": "Returns FlatBuffer schema",
					"text/plain":                "Returns both schemas",
				},
			},
			"POST /api/v1/xtce/decode": "Decode a base64 packet against a named container in an XTCE document",
			"POST /api/v1/xtce/encode": "Encode engineering values into a packet or command against an XTCE document",
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(info)
}

type decodeRequest struct {
	XTCE      string `json:"xtce"`
	Container string `json:"container"`
	Data      string `json:"data"` // base64
}

type decodeResponse struct {
	Container string                 `json:"container"`
	Values    map[string]interface{} `json:"values"`
}

// handleDecodePacket decodes a base64-encoded packet against a named root
// container in a caller-supplied XTCE document.
func (h *XTCEHandler) handleDecodePacket(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req decodeRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 10*1024*1024)).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	schema, err := loadSchema(req.XTCE)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid base64 data: %v", err), http.StatusBadRequest)
		return
	}

	result, err := schema.DecodePacket(req.Container, data)
	if err != nil {
		http.Error(w, fmt.Sprintf("decode failed: %v", err), http.StatusUnprocessableEntity)
		return
	}

	values := make(map[string]interface{}, len(result.Values))
	for _, v := range result.Values {
		values[v.Name] = v.Engineering
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(decodeResponse{Container: result.Container, Values: values})
}

type encodeRequest struct {
	XTCE      string                 `json:"xtce"`
	Container string                 `json:"container,omitempty"`
	Command   string                 `json:"command,omitempty"`
	Values    map[string]interface{} `json:"values"`
}

type encodeResponse struct {
	Data string `json:"data"` // base64
}

// handleEncodePacket encodes a caller-supplied value map into either a
// container's packet bytes or a MetaCommand's bytes, depending on which of
// Container/Command is set.
func (h *XTCEHandler) handleEncodePacket(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req encodeRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 10*1024*1024)).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	schema, err := loadSchema(req.XTCE)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var data []byte
	switch {
	case req.Command != "":
		data, err = schema.EncodeCommand(req.Command, req.Values)
	case req.Container != "":
		data, err = schema.EncodePacket(req.Container, req.Values)
	default:
		http.Error(w, "one of container or command is required", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("encode failed: %v", err), http.StatusUnprocessableEntity)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(encodeResponse{Data: base64.StdEncoding.EncodeToString(data)})
}

func loadSchema(xtceXML string) (*codec.Schema, error) {
	if strings.TrimSpace(xtceXML) == "" {
		return nil, fmt.Errorf("xtce document is required")
	}
	root, err := xtceloader.Load(strings.NewReader(xtceXML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse XTCE: %w", err)
	}
	schema, err := codec.Load(root)
	if err != nil {
		return nil, fmt.Errorf("failed to index XTCE schema: %w", err)
	}
	return schema, nil
}

// ConversionOptions holds options for XTCE conversion.
type ConversionOptions struct {
	Namespace        string
	SchemaID         string
	IncludeTelemetry bool
	IncludeCommands  bool
	GenerateEnums    bool
	FieldIDOffset    int
}

// ConversionResult holds the result of XTCE conversion.
type ConversionResult struct {
	Name             string
	Description      string
	JSONSchemaString string
	FlatBufferSchema string
	TelemetryCount   int
	CommandCount     int
	Warnings         []string
}

// XTCEConverter converts XTCE XML to JSON Schema and FlatBuffer schema,
// reading off the shared internal/xtce/model tree rather than a private
// parallel representation.
type XTCEConverter struct {
	mu sync.Mutex
}

// NewXTCEConverter creates a new XTCE converter.
func NewXTCEConverter() *XTCEConverter {
	return &XTCEConverter{}
}

// Convert converts XTCE XML to JSON Schema and FlatBuffer schema.
func (c *XTCEConverter) Convert(ctx context.Context, xmlContent string, options ConversionOptions) (*ConversionResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	root, err := xtceloader.Load(strings.NewReader(xmlContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse XTCE: %w", err)
	}

	tree := flattenTree(root)

	jsonSchema := c.generateJSONSchema(root, tree, options)
	jsonSchemaBytes, err := json.MarshalIndent(jsonSchema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON Schema: %w", err)
	}

	fbsSchema := c.generateFlatBufferSchema(root, tree, options)

	var warnings []string
	if len(tree.parameters) == 0 && len(tree.commandArgs) == 0 {
		warnings = append(warnings, "document declares no telemetry parameters or command arguments")
	}

	return &ConversionResult{
		Name:             strings.TrimPrefix(root.QualifiedName, "/"),
		Description:      root.Header,
		JSONSchemaString: string(jsonSchemaBytes),
		FlatBufferSchema: fbsSchema,
		TelemetryCount:   len(tree.parameters),
		CommandCount:     len(tree.commandArgs),
		Warnings:         warnings,
	}, nil
}

// namedArgument wraps a MetaCommand argument; it does not record the owning
// command, since the generated schema's command fields are flattened across
// every command in the document (matching the original single-command-set
// behavior).
type namedArgument struct {
	model.Argument
}

// spaceSystemTree is the flattened view of a (possibly nested) SpaceSystem
// used by schema generation: every ParameterType/ArgumentType/Parameter/
// MetaCommand reachable from the root, regardless of nesting depth.
type spaceSystemTree struct {
	parameterTypes map[string]*model.ParameterType
	argumentTypes  map[string]*model.ArgumentType
	parameters     []*model.Parameter
	commandArgs    []namedArgument
}

func flattenTree(ss *model.SpaceSystem) *spaceSystemTree {
	tree := &spaceSystemTree{
		parameterTypes: make(map[string]*model.ParameterType),
		argumentTypes:  make(map[string]*model.ArgumentType),
	}
	var walk func(n *model.SpaceSystem)
	walk = func(n *model.SpaceSystem) {
		for name, pt := range n.ParameterTypes {
			tree.parameterTypes[name] = pt
		}
		for name, at := range n.ArgumentTypes {
			tree.argumentTypes[name] = at
		}
		for _, p := range n.Parameters {
			tree.parameters = append(tree.parameters, p)
		}
		for _, mc := range n.MetaCommands {
			for _, a := range mc.Arguments {
				tree.commandArgs = append(tree.commandArgs, namedArgument{a})
			}
		}
		for _, child := range n.Children {
			walk(child)
		}
	}
	walk(ss)
	return tree
}

// typeInfo is the schema-generation-facing view of a ParameterType or
// ArgumentType: the same shape the converter worked from before the
// generator was pointed at internal/xtce/model, kept so the generation
// functions below stay unchanged in structure.
type typeInfo struct {
	Name          string
	Type          string // "integer", "float", "string", "enumerated", "boolean", "time", "binary", "array"
	Signed        bool
	SizeInBits    int
	Encoding      string
	Unit          string
	MinInclusive  *float64
	MaxInclusive  *float64
	Enumerations  []enumValue
	BooleanLabels *booleanLabels
}

type enumValue struct {
	Value int64
	Label string
}

type booleanLabels struct {
	Zero string
	One  string
}

func typeInfoFromParameterType(pt *model.ParameterType) *typeInfo {
	info := &typeInfo{Name: pt.Name}
	switch pt.Kind {
	case model.PTInteger:
		info.Type = "integer"
	case model.PTFloat:
		info.Type = "float"
	case model.PTString:
		info.Type = "string"
	case model.PTBinary:
		info.Type = "binary"
	case model.PTEnumerated:
		info.Type = "enumerated"
	case model.PTBoolean:
		info.Type = "boolean"
	case model.PTAbsoluteTime:
		info.Type = "time"
	case model.PTArray:
		info.Type = "array"
	}
	info.Signed = pt.Encoding.Signed == model.TwosComplement
	info.SizeInBits = encodingSizeBits(pt.Encoding)
	info.Encoding = encodingLabel(pt.Encoding)
	if len(pt.Units) > 0 {
		info.Unit = pt.Units[0]
	}
	if pt.ValidRange != nil {
		if pt.ValidRange.HasMin {
			v := pt.ValidRange.Min
			info.MinInclusive = &v
		}
		if pt.ValidRange.HasMax {
			v := pt.ValidRange.Max
			info.MaxInclusive = &v
		}
	}
	for _, e := range pt.EnumLabels {
		info.Enumerations = append(info.Enumerations, enumValue{Value: e.Value, Label: e.Label})
	}
	if pt.Kind == model.PTBoolean {
		info.BooleanLabels = &booleanLabels{Zero: pt.ZeroString, One: pt.OneString}
	}
	return info
}

func typeInfoFromArgumentType(at *model.ArgumentType) *typeInfo {
	info := &typeInfo{Name: at.Name}
	switch at.Kind {
	case model.ATInteger:
		info.Type = "integer"
	case model.ATFloat:
		info.Type = "float"
	case model.ATEnumerated:
		info.Type = "enumerated"
	case model.ATBoolean:
		info.Type = "boolean"
	case model.ATAbsoluteTime:
		info.Type = "time"
	case model.ATArray:
		info.Type = "array"
	}
	info.Signed = at.Encoding.Signed == model.TwosComplement
	info.SizeInBits = encodingSizeBits(at.Encoding)
	info.Encoding = encodingLabel(at.Encoding)
	if at.ValidRange != nil {
		if at.ValidRange.HasMin {
			v := at.ValidRange.Min
			info.MinInclusive = &v
		}
		if at.ValidRange.HasMax {
			v := at.ValidRange.Max
			info.MaxInclusive = &v
		}
	}
	for _, e := range at.EnumLabels {
		info.Enumerations = append(info.Enumerations, enumValue{Value: e.Value, Label: e.Label})
	}
	if at.Kind == model.ATBoolean {
		info.BooleanLabels = &booleanLabels{Zero: at.ZeroString, One: at.OneString}
	}
	return info
}

func encodingSizeBits(e model.DataEncoding) int {
	switch e.Kind {
	case model.EncodingInteger, model.EncodingFloat:
		return e.SizeInBits
	case model.EncodingString:
		return e.StringSizeInBits
	case model.EncodingBinary:
		return e.BinarySizeInBits
	default:
		return 0
	}
}

func encodingLabel(e model.DataEncoding) string {
	switch e.Kind {
	case model.EncodingInteger:
		if e.Signed == model.TwosComplement {
			return "twosComplement"
		}
		return "unsigned"
	case model.EncodingFloat:
		return "IEEE754_1985"
	case model.EncodingString:
		return "UTF-8"
	case model.EncodingBinary:
		return "binary"
	default:
		return ""
	}
}

// generateJSONSchema generates a JSON Schema from a parsed XTCE document.
func (c *XTCEConverter) generateJSONSchema(root *model.SpaceSystem, tree *spaceSystemTree, options ConversionOptions) map[string]interface{} {
	schema := map[string]interface{}{
		"$schema":              "https://json-schema.org/draft/2019-09/schema",
		"title":                strings.TrimPrefix(root.QualifiedName, "/"),
		"description":          root.Header,
		"type":                 "object",
		"additionalProperties": false,
	}

	if options.SchemaID != "" {
		schema["$id"] = options.SchemaID
	}

	properties := make(map[string]interface{})
	definitions := make(map[string]interface{})
	fieldID := options.FieldIDOffset

	for name, pt := range tree.parameterTypes {
		definitions[name] = c.typeToJSONSchemaProperty(typeInfoFromParameterType(pt), fieldID)
		fieldID++
	}
	for name, at := range tree.argumentTypes {
		if _, exists := definitions[name]; !exists {
			definitions[name] = c.typeToJSONSchemaProperty(typeInfoFromArgumentType(at), fieldID)
			fieldID++
		}
	}

	if options.IncludeTelemetry {
		for _, param := range tree.parameters {
			pt, ok := tree.parameterTypes[param.TypeRef]
			if ok {
				properties[baseName(param.QualifiedName)] = c.typeToJSONSchemaProperty(typeInfoFromParameterType(pt), fieldID)
			}
			fieldID++
		}
	}

	if options.IncludeCommands {
		for _, arg := range tree.commandArgs {
			at, ok := tree.argumentTypes[arg.TypeRef]
			if ok {
				properties["cmd_"+arg.Name] = c.typeToJSONSchemaProperty(typeInfoFromArgumentType(at), fieldID)
			}
			fieldID++
		}
	}

	schema["properties"] = properties
	schema["definitions"] = definitions

	return schema
}

func baseName(qualified string) string {
	i := strings.LastIndex(qualified, "/")
	if i < 0 {
		return qualified
	}
	return qualified[i+1:]
}

// typeToJSONSchemaProperty converts a parameter/argument type to a JSON
// Schema property.
func (c *XTCEConverter) typeToJSONSchemaProperty(info *typeInfo, fieldID int) interface{} {
	prop := map[string]interface{}{
		"x-flatbuffer-field-id": fieldID,
	}

	if info.Unit != "" {
		prop["x-xtce-unit"] = info.Unit
	}
	if info.Encoding != "" {
		prop["x-xtce-encoding"] = info.Encoding
	}
	if info.SizeInBits > 0 {
		prop["x-xtce-encoding-size"] = info.SizeInBits
	}

	switch info.Type {
	case "integer":
		prop["type"] = "integer"
		prop["x-flatbuffer-type"] = integerToFlatBufferType(info.SizeInBits, info.Signed)
		if info.MinInclusive != nil {
			prop["minimum"] = *info.MinInclusive
		}
		if info.MaxInclusive != nil {
			prop["maximum"] = *info.MaxInclusive
		}

	case "float":
		prop["type"] = "number"
		prop["x-flatbuffer-type"] = floatToFlatBufferType(info.SizeInBits)
		if info.MinInclusive != nil {
			prop["minimum"] = *info.MinInclusive
		}
		if info.MaxInclusive != nil {
			prop["maximum"] = *info.MaxInclusive
		}

	case "string":
		prop["type"] = "string"
		prop["x-flatbuffer-type"] = "string"
		if info.SizeInBits > 0 {
			prop["maxLength"] = info.SizeInBits / 8
		}

	case "enumerated":
		prop["type"] = "string"
		prop["x-flatbuffer-type"] = "int32"
		var enumLabels []string
		enumValues := make(map[string]int64)
		for _, e := range info.Enumerations {
			enumLabels = append(enumLabels, e.Label)
			enumValues[e.Label] = e.Value
		}
		prop["enum"] = enumLabels
		prop["x-xtce-enum-values"] = enumValues

	case "boolean":
		prop["type"] = "boolean"
		prop["x-flatbuffer-type"] = "bool"
		if info.BooleanLabels != nil {
			prop["x-xtce-boolean-labels"] = map[string]string{
				"zero": info.BooleanLabels.Zero,
				"one":  info.BooleanLabels.One,
			}
		}

	case "time":
		prop["type"] = "string"
		prop["format"] = "date-time"
		prop["x-flatbuffer-type"] = "int64"

	case "binary":
		prop["type"] = "string"
		prop["format"] = "binary"
		prop["x-flatbuffer-type"] = "[ubyte]"

	case "array":
		prop["type"] = "array"
		prop["x-flatbuffer-type"] = "[ubyte]"

	default:
		prop["type"] = "string"
		prop["x-flatbuffer-type"] = "[ubyte]"
	}

	return prop
}

// generateFlatBufferSchema generates a FlatBuffer schema from a parsed XTCE
// document.
func (c *XTCEConverter) generateFlatBufferSchema(root *model.SpaceSystem, tree *spaceSystemTree, options ConversionOptions) string {
	var sb strings.Builder

	name := strings.TrimPrefix(root.QualifiedName, "/")

	sb.WriteString("// Auto-generated FlatBuffer schema from XTCE\n")
	sb.WriteString(fmt.Sprintf("// Generated: %s\n", time.Now().UTC().Format(time.RFC3339)))
	sb.WriteString("\n")

	if options.Namespace != "" {
		sb.WriteString(fmt.Sprintf("namespace %s;\n\n", options.Namespace))
	}

	fileID := name
	if len(fileID) > 3 {
		fileID = fileID[:3]
	}
	sb.WriteString(fmt.Sprintf("file_identifier \"$%s\";\n\n", strings.ToUpper(fileID)))

	if options.GenerateEnums {
		for typeName, pt := range tree.parameterTypes {
			if pt.Kind != model.PTEnumerated || len(pt.EnumLabels) == 0 {
				continue
			}
			sb.WriteString(fmt.Sprintf("enum %s : int {\n", sanitizeName(typeName)))
			for _, e := range pt.EnumLabels {
				sb.WriteString(fmt.Sprintf("  %s = %d,\n", sanitizeName(e.Label), e.Value))
			}
			sb.WriteString("}\n\n")
		}
	}

	if root.Header != "" {
		sb.WriteString(fmt.Sprintf("/// %s\n", root.Header))
	}
	sb.WriteString(fmt.Sprintf("table %s {\n", sanitizeName(name)))

	fieldID := options.FieldIDOffset

	if options.IncludeTelemetry {
		for _, param := range tree.parameters {
			pt, ok := tree.parameterTypes[param.TypeRef]
			if ok {
				fbType := typeToFlatBufferType(typeInfoFromParameterType(pt), pt.Name, options.GenerateEnums)
				sb.WriteString(fmt.Sprintf("  %s:%s (id: %d);\n", sanitizeName(baseName(param.QualifiedName)), fbType, fieldID))
			}
			fieldID++
		}
	}

	if options.IncludeCommands {
		for _, arg := range tree.commandArgs {
			at, ok := tree.argumentTypes[arg.TypeRef]
			if ok {
				fbType := typeToFlatBufferType(typeInfoFromArgumentType(at), at.Name, options.GenerateEnums)
				sb.WriteString(fmt.Sprintf("  cmd_%s:%s (id: %d);\n", sanitizeName(arg.Name), fbType, fieldID))
			}
			fieldID++
		}
	}

	sb.WriteString("}\n\n")
	sb.WriteString(fmt.Sprintf("root_type %s;\n", sanitizeName(name)))

	return sb.String()
}

// Helper functions

func sanitizeName(name string) string {
	name = strings.TrimPrefix(name, "/")
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, ".", "_")
	name = strings.ReplaceAll(name, "-", "_")
	name = strings.ReplaceAll(name, " ", "_")
	for strings.Contains(name, "__") {
		name = strings.ReplaceAll(name, "__", "_")
	}
	if len(name) > 0 && name[0] >= '0' && name[0] <= '9' {
		name = "_" + name
	}
	return name
}

func integerToFlatBufferType(sizeInBits int, signed bool) string {
	if signed {
		switch {
		case sizeInBits <= 8:
			return "int8"
		case sizeInBits <= 16:
			return "int16"
		case sizeInBits <= 32:
			return "int32"
		default:
			return "int64"
		}
	}
	switch {
	case sizeInBits <= 8:
		return "uint8"
	case sizeInBits <= 16:
		return "uint16"
	case sizeInBits <= 32:
		return "uint32"
	default:
		return "uint64"
	}
}

func floatToFlatBufferType(sizeInBits int) string {
	if sizeInBits <= 32 {
		return "float32"
	}
	return "float64"
}

func typeToFlatBufferType(info *typeInfo, typeName string, useEnums bool) string {
	switch info.Type {
	case "integer":
		return integerToFlatBufferType(info.SizeInBits, info.Signed)
	case "float":
		return floatToFlatBufferType(info.SizeInBits)
	case "string":
		return "string"
	case "enumerated":
		if useEnums {
			return sanitizeName(typeName)
		}
		return "int32"
	case "boolean":
		return "bool"
	case "time":
		return "long"
	case "binary", "array":
		return "[ubyte]"
	default:
		return "[ubyte]"
	}
}
