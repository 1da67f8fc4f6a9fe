package server

import (
	"encoding/csv"
	"net/http"
	"strconv"

	"paper-trader-go/internal/models"

	"github.com/gin-gonic/gin"
)

var csvHeader = []string{"timestamp", "side", "asset", "price", "amount", "realizedPnL", "uid"}

// exportTrades streams the full ledger as CSV.
func (s *Server) exportTrades(c *gin.Context) {
	trades, err := s.Sim.Trades()
	if err != nil {
		s.internalError(c, "ExportTrades", err)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="trades.csv"`)
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	_ = w.Write(csvHeader)
	for _, t := range trades {
		_ = w.Write([]string{
			t.Timestamp,
			t.Side,
			t.Asset,
			strconv.FormatFloat(t.Price, 'f', -1, 64),
			strconv.FormatFloat(t.Amount, 'f', -1, 64),
			strconv.FormatFloat(t.RealizedPnL, 'f', -1, 64),
			t.Uid,
		})
	}
	w.Flush()
}

// importTrades appends ledger rows from a CSV body through the
// add-trade path. The balance is not touched; like any add-trade
// caller, the importer owns the cash side.
func (s *Server) importTrades(c *gin.Context) {
	r := csv.NewReader(c.Request.Body)
	r.FieldsPerRecord = len(csvHeader)

	records, err := r.ReadAll()
	if err != nil {
		s.badRequest(c, "invalid csv: "+err.Error())
		return
	}
	if len(records) == 0 {
		s.badRequest(c, "empty csv")
		return
	}
	if records[0][0] == csvHeader[0] {
		records = records[1:] // skip header row
	}

	uids := make([]string, 0, len(records))
	for i, rec := range records {
		price, perr := strconv.ParseFloat(rec[3], 64)
		amount, aerr := strconv.ParseFloat(rec[4], 64)
		pnl, _ := strconv.ParseFloat(rec[5], 64)
		if perr != nil || aerr != nil {
			s.badRequest(c, "invalid number in csv row "+strconv.Itoa(i+1))
			return
		}

		uid, err := s.Sim.AddTrade(models.Trade{
			Timestamp:   rec[0],
			Side:        rec[1],
			Asset:       rec[2],
			Price:       price,
			Amount:      amount,
			RealizedPnL: pnl,
			Uid:         rec[6],
		})
		if err != nil {
			s.serviceError(c, "ImportTrades", err)
			return
		}
		uids = append(uids, uid)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "imported": len(uids), "uids": uids})
}
