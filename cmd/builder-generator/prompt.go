package main

import (
	"errors"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// promptEnabled reports whether interactive confirmation is allowed.
func promptEnabled() bool {
	return os.Getenv("BG_NO_PROMPT") == ""
}

// confirm asks a yes/no question on the terminal.
var confirm = confirmOverwrite

func confirmOverwrite(message string) (bool, error) {
	var ok bool

	prompt := &survey.Confirm{
		Message: message,
		Help:    "Generated files are replaced entirely. Pass -yes or set BG_NO_PROMPT=1 to skip this question.",
	}

	if err := survey.AskOne(prompt, &ok); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return false, nil
		}

		return false, err
	}

	return ok, nil
}
