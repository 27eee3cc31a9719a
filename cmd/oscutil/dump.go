package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/nebularoute/osc"
)

var dumpCmd = &cobra.Command{
	Use:   "dump [file]",
	Short: "Parse a raw OSC packet and print its structure",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r := io.Reader(os.Stdin)
		if len(args) == 1 {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			r = f
		}
		buf, err := io.ReadAll(r)
		if err != nil {
			return err
		}
		pkt, err := osc.ParsePacket(buf)
		if err != nil {
			return err
		}
		return dumpPacket(pkt, 0)
	},
}

func dumpPacket(pkt *osc.Packet, depth int) error {
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}
	if pkt.Message != nil {
		fmt.Printf("%s%v\n", indent, pkt.Message)
		return nil
	}
	fmt.Printf("%s#bundle %v\n", indent, pkt.Bundle.Timetag)
	for _, raw := range pkt.Bundle.RawElements {
		elem, err := osc.ParsePacket(raw)
		if err != nil {
			return err
		}
		if err := dumpPacket(elem, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(dumpCmd)
}
