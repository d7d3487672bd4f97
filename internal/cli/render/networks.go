package render

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/salvo/internal/usecase"
)

// NetworksRenderer renders network lists
type NetworksRenderer struct {
	out  io.Writer
	json bool
}

// NewNetworksRenderer creates a new networks renderer
func NewNetworksRenderer(out io.Writer, jsonOutput bool) *NetworksRenderer {
	return &NetworksRenderer{out: out, json: jsonOutput}
}

// Render renders the configured networks, marking the active one
func (r *NetworksRenderer) Render(result *usecase.ListNetworksResult) error {
	if r.json {
		return WriteJSON(r.out, result.Networks)
	}

	if len(result.Networks) == 0 {
		fmt.Fprintln(r.out, "No networks configured")
		return nil
	}

	fmt.Fprintln(r.out, "🌐 Available Networks:")
	fmt.Fprintln(r.out)

	t := newTable(r.out)
	t.AppendHeader(table.Row{"", "NETWORK", "CHAIN ID", "RPC", "EXPLORER"})
	for _, n := range result.Networks {
		marker := " "
		name := n.Name
		if n.Current {
			marker = successStyle.Sprint("▸")
			name = sectionHeaderStyle.Sprint(n.Name)
		}
		t.AppendRow(table.Row{marker, name, n.ChainID, n.RPCURL, faintStyle.Sprint(n.ExplorerURL)})
	}
	t.Render()
	return nil
}

var _ Renderer[*usecase.ListNetworksResult] = (*NetworksRenderer)(nil)
