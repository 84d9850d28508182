package predict

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"climate/internal/climate"
)

// TrainLogHeader is written once, when the training log is new or empty.
var TrainLogHeader = []string{"epoch", "loss", "val_loss", "R_squared"}

// EpochRow is one final-fit epoch as logged.
type EpochRow struct {
	Epoch   int
	Loss    float64
	ValLoss float64
}

// TrainLog accumulates the rows of one run before they are appended to the
// log file in a single write.
type TrainLog struct {
	Epochs []EpochRow
}

// Observe records an epoch; it matches model.Budget.OnEpoch.
func (l *TrainLog) Observe(epoch int, loss, valLoss float64) {
	l.Epochs = append(l.Epochs, EpochRow{Epoch: epoch, Loss: loss, ValLoss: valLoss})
}

// Last returns the final epoch's row.
func (l *TrainLog) Last() (EpochRow, bool) {
	if len(l.Epochs) == 0 {
		return EpochRow{}, false
	}
	return l.Epochs[len(l.Epochs)-1], true
}

// Encode renders the run: optional header, one row per epoch with empty
// R_squared, and a closing "final" row carrying the last losses and r2.
// Epochs are logged 0-based.
func (l *TrainLog) Encode(withHeader bool, r2 float64) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if withHeader {
		if err := w.Write(TrainLogHeader); err != nil {
			return nil, err
		}
	}
	for _, e := range l.Epochs {
		if err := w.Write([]string{strconv.Itoa(e.Epoch - 1), climate.FormatFloat(e.Loss), climate.FormatFloat(e.ValLoss), ""}); err != nil {
			return nil, err
		}
	}
	last, _ := l.Last()
	if err := w.Write([]string{"final", climate.FormatFloat(last.Loss), climate.FormatFloat(last.ValLoss), climate.FormatFloat(r2)}); err != nil {
		return nil, err
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
