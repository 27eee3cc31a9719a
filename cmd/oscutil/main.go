// Command oscutil sends, receives, and inspects OSC packets.
package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var log = logrus.StandardLogger()

var rootCmd = &cobra.Command{
	Use:   "oscutil",
	Short: "Send, serve, and dump Open Sound Control packets",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
