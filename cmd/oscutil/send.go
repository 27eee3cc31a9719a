package main

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nebularoute/osc"
)

var (
	sendTarget string
	sendArgs   []string
)

var sendCmd = &cobra.Command{
	Use:   "send <path>",
	Short: "Send a single OSC message over UDP",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parsed, err := parseArgs(sendArgs)
		if err != nil {
			return err
		}

		conn, err := net.ListenPacket("udp", "127.0.0.1:0")
		if err != nil {
			return err
		}
		defer conn.Close()

		addr, err := net.ResolveUDPAddr("udp", sendTarget)
		if err != nil {
			return fmt.Errorf("resolving %q: %w", sendTarget, err)
		}

		msg := &osc.Message{Pattern: args[0], Arguments: parsed, Timetag: osc.Immediate}
		buf := msg.Append(nil)
		if _, err := conn.WriteTo(buf, addr); err != nil {
			return err
		}
		log.WithField("target", sendTarget).Infof("sent %v", msg)
		return nil
	},
}

// parseArgs turns "type:value" strings (e.g. "i:23", "f:0.5",
// "s:hello") into typed Arguments.
func parseArgs(specs []string) ([]osc.Argument, error) {
	out := make([]osc.Argument, 0, len(specs))
	for _, spec := range specs {
		tc, val, ok := strings.Cut(spec, ":")
		if !ok {
			return nil, fmt.Errorf("bad argument %q, want type:value", spec)
		}
		a, err := parseOneArg(tc, val)
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", spec, err)
		}
		out = append(out, a)
	}
	return out, nil
}

func parseOneArg(typeCode, val string) (osc.Argument, error) {
	switch typeCode {
	case "i":
		v, err := strconv.ParseInt(val, 10, 32)
		a := osc.Int32(v)
		return &a, err
	case "h":
		v, err := strconv.ParseInt(val, 10, 64)
		a := osc.Int64(v)
		return &a, err
	case "f":
		v, err := strconv.ParseFloat(val, 32)
		a := osc.Float32(v)
		return &a, err
	case "d":
		v, err := strconv.ParseFloat(val, 64)
		a := osc.Float64(v)
		return &a, err
	case "s":
		a := osc.String(val)
		return &a, nil
	case "S":
		a := osc.Symbol(val)
		return &a, nil
	case "c":
		if len(val) != 1 {
			return nil, fmt.Errorf("char argument must be exactly one byte, got %q", val)
		}
		a := osc.Char(val[0])
		return &a, nil
	case "T":
		return osc.True{}, nil
	case "F":
		return osc.False{}, nil
	case "N":
		return osc.Null{}, nil
	case "I":
		return osc.Impulse{}, nil
	default:
		return nil, fmt.Errorf("unsupported argument type %q", typeCode)
	}
}

func init() {
	sendCmd.Flags().StringVar(&sendTarget, "target", "127.0.0.1:9000", "`host:port` to send to")
	sendCmd.Flags().StringArrayVar(&sendArgs, "arg", nil, "a type:value argument, may be repeated (e.g. --arg i:23 --arg s:hi)")
	rootCmd.AddCommand(sendCmd)
}
