package parse

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/aclindsa/ofxgo"

	"github.com/tallyhq/tally/internal/extract"
	"github.com/tallyhq/tally/internal/model"
)

const bankSource = "Bank"

// OFXParser handles OFX/QFX bank exports. It works on the document's raw
// bytes rather than extracted lines, since OFX is a structured format with
// its own parser.
type OFXParser struct{}

// Name implements Parser.
func (p *OFXParser) Name() string { return "ofx" }

// TryParse implements Parser.
func (p *OFXParser) TryParse(doc *extract.Document) ([]model.RawTransaction, bool) {
	if len(doc.Raw) == 0 {
		return nil, false
	}

	// Some banks emit leading blank lines before the OFX header.
	content := bytes.TrimLeft(doc.Raw, " \t\r\n")

	resp, err := ofxgo.ParseResponse(bytes.NewReader(content))
	if err != nil {
		return nil, false
	}

	var txns []model.RawTransaction
	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		for _, tx := range stmt.BankTranList.Transactions {
			txns = append(txns, convertOFX(tx))
		}
	}
	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		for _, tx := range stmt.BankTranList.Transactions {
			txns = append(txns, convertOFX(tx))
		}
	}

	return txns, true
}

func convertOFX(tx ofxgo.Transaction) model.RawTransaction {
	amount, _ := tx.TrnAmt.Float64()

	description := strings.TrimSpace(string(tx.Name))
	if memo := strings.TrimSpace(string(tx.Memo)); memo != "" && description == "" {
		description = memo
	}

	return model.RawTransaction{
		Date:        model.FormatDate(tx.DtPosted.Time),
		Description: description,
		Amount:      strconv.FormatFloat(amount, 'f', 2, 64),
		Source:      bankSource,
	}
}
