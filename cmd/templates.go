package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/shouni/go-image-edit-kit/pkg/prompts"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// templatesCmd は、挿入可能なテンプレート断片の一覧を表示するサブコマンドなのだ。
var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "挿入できるテンプレート断片の一覧を表示するのだ。",
	Long: `--template フラグで指定できる断片（'カテゴリ:値' 形式）のカタログを一覧表示するのだ。
あわせて --size で指定できる比率ラベルも表示するのだよ。`,
	RunE: templatesCommand,
}

func templatesCommand(cmd *cobra.Command, args []string) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"CATEGORY", "LABEL", "FRAGMENT"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")

	for _, category := range prompts.Catalog() {
		for _, tmpl := range category.Templates {
			table.Append([]string{category.Name, tmpl.Label, tmpl.Text})
		}
	}
	table.Render()

	fmt.Printf("\n--size で指定できる比率: %s\n", strings.Join(prompts.SizeLabels(), " / "))
	return nil
}
