package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"gopkg.in/yaml.v3"

	"linklead-engine/internal/mapping"
)

// Plain is the guaranteed-to-work text presenter: YAML preview on stdout,
// y/N/e prompt on stdin, $EDITOR round-trip for edits.
type Plain struct {
	In  io.Reader
	Out io.Writer
}

func NewPlain() *Plain {
	return &Plain{In: os.Stdin, Out: os.Stdout}
}

func (p *Plain) Review(payload mapping.Payload) (mapping.Payload, Decision, error) {
	reader := bufio.NewReader(p.In)

	for {
		rendered, err := yaml.Marshal(payload)
		if err != nil {
			return payload, DecisionAbort, err
		}

		fmt.Fprintln(p.Out, "\nReady to send to HubSpot:")
		fmt.Fprintln(p.Out)
		fmt.Fprintln(p.Out, string(rendered))
		fmt.Fprint(p.Out, "Send this data to HubSpot? [y]es / [e]dit / [N]o: ")

		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return payload, DecisionAbort, err
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return payload, DecisionSend, nil
		case "e", "edit":
			edited, err := editPayload(payload)
			if err != nil {
				fmt.Fprintf(p.Out, "edit failed (%v), keeping previous version\n", err)
				continue
			}
			payload = edited
		default:
			return payload, DecisionAbort, nil
		}
	}
}

// editPayload round-trips the payload through $EDITOR as a YAML temp file.
func editPayload(payload mapping.Payload) (mapping.Payload, error) {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}

	rendered, err := yaml.Marshal(payload)
	if err != nil {
		return payload, err
	}

	tmp, err := os.CreateTemp("", "linklead-*.yml")
	if err != nil {
		return payload, err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(rendered); err != nil {
		tmp.Close()
		return payload, err
	}
	tmp.Close()

	cmd := exec.Command(editor, tmp.Name())
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return payload, fmt.Errorf("run %s: %w", editor, err)
	}

	b, err := os.ReadFile(tmp.Name())
	if err != nil {
		return payload, err
	}

	var edited mapping.Payload
	if err := yaml.Unmarshal(b, &edited); err != nil {
		return payload, fmt.Errorf("edited yaml invalid: %w", err)
	}
	return edited, nil
}
