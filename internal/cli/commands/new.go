package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const blankTemplate = `export function %s() {
  return <div>%s</div>
}
`

const counterTemplate = `import { useState } from "react"

export function %s() {
  const [count, setCount] = useState(0)
  return (
    <div>
      <span>Count: {count}</span>
      <button onClick={() => setCount(count + 1)}>+</button>
    </div>
  )
}
`

const storeTemplate = `export async function %s({ services }) {
  const items = await services.store.keys()
  return (
    <ul>
      {items.map((k) => <li key={k}>{k}</li>)}
    </ul>
  )
}
`

// NewNewCommand scaffolds a widget source file.
func NewNewCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "new [name]",
		Short: "Scaffold a new widget",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) > 0 {
				name = args[0]
			} else {
				if err := survey.AskOne(&survey.Input{Message: "Widget name:"}, &name, survey.WithValidator(survey.Required)); err != nil {
					return err
				}
			}

			var description string
			if err := survey.AskOne(&survey.Input{Message: "Description:"}, &description); err != nil {
				return err
			}

			var starter string
			if err := survey.AskOne(&survey.Select{
				Message: "Starter template:",
				Options: []string{"blank", "counter", "store-list"},
				Default: "blank",
			}, &starter); err != nil {
				return err
			}

			var body string
			component := exportName(name)
			switch starter {
			case "counter":
				body = fmt.Sprintf(counterTemplate, component)
			case "store-list":
				body = fmt.Sprintf(storeTemplate, component)
			default:
				body = fmt.Sprintf(blankTemplate, component, description)
			}

			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
			path := filepath.Join(dir, name+".tsx")
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
				return err
			}

			color.Green("✓ created %s", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "widgets", "directory to create the widget in")
	return cmd
}

// exportName upper-cases the first byte so the scaffold exports a component
// identifier.
func exportName(name string) string {
	if name == "" {
		return "Widget"
	}
	b := []byte(name)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	for i, c := range b {
		if c == '-' || c == '_' || c == ' ' {
			b[i] = '_'
		}
	}
	return string(b)
}
