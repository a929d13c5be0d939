// Command agentauth-chat is an interactive console conversation with a
// remote tool-using agent. It serves the OAuth redirect callback locally and
// resumes turns suspended on credential requests.
package main

import (
	"log"
	"os"

	"github.com/viant/agentauth/chat"
	_ "github.com/viant/scy/kms/blowfish"
)

func main() {
	if err := chat.Run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}
