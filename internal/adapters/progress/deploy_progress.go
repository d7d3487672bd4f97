package progress

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/trebuchet-org/salvo/internal/domain/config"
	"github.com/trebuchet-org/salvo/internal/domain/models"
	"github.com/trebuchet-org/salvo/internal/usecase"
)

var (
	infoColor    = color.New(color.FgWhite)
	pendingColor = color.New(color.FgYellow)
	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed, color.Bold)
	stepColor    = color.New(color.FgCyan)
	linkColor    = color.New(color.Faint)
)

// NetworkSource reports the active network. It may change during a batch
// when the wallet switches chains.
type NetworkSource interface {
	Network() *config.Network
}

// DeployProgress prints the batch log as it is produced, with a spinner
// while a transaction is waiting to be mined
type DeployProgress struct {
	out      io.Writer
	networks NetworkSource
	spinner  *Spinner
}

// NewDeployProgress creates a console sink writing to stdout
func NewDeployProgress(networks NetworkSource) *DeployProgress {
	return NewDeployProgressTo(os.Stdout, networks)
}

// NewDeployProgressTo creates a console sink writing to out
func NewDeployProgressTo(out io.Writer, networks NetworkSource) *DeployProgress {
	return &DeployProgress{
		out:      out,
		networks: networks,
		spinner:  NewSpinner(out),
	}
}

// OnProgress renders log entries and drives the spinner
func (p *DeployProgress) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	switch event.Stage {
	case usecase.StageAwaitingReceipt:
		p.spinner.Start(event.Message)
	case usecase.StageLog:
		p.spinner.Stop()
		entry, ok := event.Metadata.(models.LogEntry)
		if !ok {
			return
		}
		p.printEntry(event, entry)
	case usecase.StageBatchCompleted:
		p.spinner.Stop()
	}
}

func (p *DeployProgress) printEntry(event usecase.ProgressEvent, entry models.LogEntry) {
	if entry.Message == "" {
		fmt.Fprintln(p.out)
		return
	}

	prefix := ""
	if event.Current > 0 && event.Total > 0 {
		prefix = stepColor.Sprintf("[%d/%d] ", event.Current, event.Total)
	}

	line := severityColor(entry.Severity).Sprint(entry.Message)
	fmt.Fprintf(p.out, "%s%s\n", prefix, line)

	if entry.ContractAddress != nil {
		if url := p.networks.Network().AddressURL(entry.ContractAddress.Hex()); url != "" {
			fmt.Fprintf(p.out, "%s%s\n", prefix, linkColor.Sprint("  "+url))
		}
	}
}

func severityColor(severity models.Severity) *color.Color {
	switch severity {
	case models.SeverityPending:
		return pendingColor
	case models.SeveritySuccess:
		return successColor
	case models.SeverityError:
		return errorColor
	default:
		return infoColor
	}
}

// Ensure DeployProgress implements ProgressSink
var _ usecase.ProgressSink = (*DeployProgress)(nil)
