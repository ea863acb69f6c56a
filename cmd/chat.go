package cmd

import (
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/grimaldi89/martechito/internal/chat"
	"github.com/grimaldi89/martechito/internal/telemetry"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the assistant in the terminal",
	Long:  `Starts an interactive session against the local index. Type "exit" or press Ctrl-D to quit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		embedder, err := buildEmbedder(cfg)
		if err != nil {
			return err
		}
		provider, err := buildProvider(cfg)
		if err != nil {
			return err
		}
		_, store, err := openIndex(cfg, embedder)
		if err != nil {
			return err
		}

		sink := telemetry.NewSink(cfg.Telemetry.URL)
		defer sink.Flush()

		retriever := buildRetriever(cfg, embedder, store)
		engine := buildEngine(cfg, provider, retriever, sink)
		sess := chat.NewSession()

		fmt.Println("Martechito ready. Ask about Google Analytics 4.")
		prompt := promptui.Prompt{Label: "you"}

		for {
			input, err := prompt.Run()
			if err != nil {
				if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
					return nil
				}
				return err
			}
			if input == "" {
				continue
			}
			if input == "exit" || input == "quit" {
				return nil
			}

			reply, err := engine.Respond(cmd.Context(), sess, input)
			if err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			fmt.Printf("\n%s\n\n", reply.Answer)
		}
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
