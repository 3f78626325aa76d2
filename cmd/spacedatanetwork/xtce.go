package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spacedatanetwork/sdn-server/internal/xtce/codec"
	"github.com/spacedatanetwork/sdn-server/internal/xtceloader"
)

var xtceCmd = &cobra.Command{
	Use:   "xtce",
	Short: "Decode and encode packets/commands against an XTCE document",
	Long: `Loads an XTCE 1.3 document and decodes a wire packet against one of its
containers, or encodes engineering values into a packet or command.`,
}

var (
	xtceDocPath      string
	xtceContainer    string
	xtceCommand      string
	xtceDataHex      string
	xtceValuesJSON   string
)

var xtceDecodeCmd = &cobra.Command{
	Use:   "decode",
	Short: "Decode a hex-encoded packet against a named container",
	RunE:  runXTCEDecode,
}

var xtceEncodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Encode engineering values into a packet or command",
	RunE:  runXTCEEncode,
}

func init() {
	xtceCmd.PersistentFlags().StringVar(&xtceDocPath, "doc", "", "path to the XTCE XML document")
	xtceCmd.MarkPersistentFlagRequired("doc")

	xtceDecodeCmd.Flags().StringVar(&xtceContainer, "container", "", "qualified container name to decode against")
	xtceDecodeCmd.Flags().StringVar(&xtceDataHex, "data", "", "hex-encoded packet bytes")
	xtceDecodeCmd.MarkFlagRequired("container")
	xtceDecodeCmd.MarkFlagRequired("data")

	xtceEncodeCmd.Flags().StringVar(&xtceContainer, "container", "", "qualified container name to encode")
	xtceEncodeCmd.Flags().StringVar(&xtceCommand, "command", "", "qualified MetaCommand name to encode")
	xtceEncodeCmd.Flags().StringVar(&xtceValuesJSON, "values", "{}", "JSON object of qualified-name/argument-name -> engineering value")

	xtceCmd.AddCommand(xtceDecodeCmd, xtceEncodeCmd)
	rootCmd.AddCommand(xtceCmd)
}

func loadXTCESchema() (*codec.Schema, error) {
	f, err := os.Open(xtceDocPath)
	if err != nil {
		return nil, fmt.Errorf("open XTCE document: %w", err)
	}
	defer f.Close()

	root, err := xtceloader.Load(f)
	if err != nil {
		return nil, fmt.Errorf("parse XTCE document: %w", err)
	}
	return codec.Load(root)
}

func runXTCEDecode(cmd *cobra.Command, args []string) error {
	schema, err := loadXTCESchema()
	if err != nil {
		return err
	}

	data, err := hexDecode(xtceDataHex)
	if err != nil {
		return fmt.Errorf("invalid --data: %w", err)
	}

	result, err := schema.DecodePacket(xtceContainer, data)
	if err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}

	values := make(map[string]interface{}, len(result.Values))
	for _, v := range result.Values {
		values[v.Name] = v.Engineering
	}
	out, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func runXTCEEncode(cmd *cobra.Command, args []string) error {
	if xtceContainer == "" && xtceCommand == "" {
		return fmt.Errorf("one of --container or --command is required")
	}

	schema, err := loadXTCESchema()
	if err != nil {
		return err
	}

	var values map[string]interface{}
	if err := json.Unmarshal([]byte(xtceValuesJSON), &values); err != nil {
		return fmt.Errorf("invalid --values JSON: %w", err)
	}

	var data []byte
	if xtceCommand != "" {
		data, err = schema.EncodeCommand(xtceCommand, values)
	} else {
		data, err = schema.EncodePacket(xtceContainer, values)
	}
	if err != nil {
		return fmt.Errorf("encode failed: %w", err)
	}

	fmt.Println(base64.StdEncoding.EncodeToString(data))
	return nil
}

// hexDecode accepts an optional "0x" prefix for convenience.
func hexDecode(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("odd-length hex string")
	}
	out := make([]byte, len(s)/2)
	for i := 0; i < len(out); i++ {
		var b int
		if _, err := fmt.Sscanf(s[i*2:i*2+2], "%02x", &b); err != nil {
			return nil, err
		}
		out[i] = byte(b)
	}
	return out, nil
}
