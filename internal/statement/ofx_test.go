package statement

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spendmatch/internal/model"
)

const ofxHeader = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
`

const checkingOFX = ofxHeader + `<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>RUB
<BANKACCTFROM>
<BANKID>044525225
<ACCTID>40817810000000000001
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-350.50
<FITID>RU2024011501
<NAME>COFFEE POINT
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240120120000[0:GMT]
<TRNAMT>-1210.00
<FITID>RU2024012001
<NAME>PURCHASE
<MEMO>PYATEROCHKA 4411
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240125120000[0:GMT]
<TRNAMT>100000.00
<FITID>RU2024012501
<NAME>SALARY
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>98439.50
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

const cardOFX = ofxHeader + `<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>USD
<CCACCTFROM>
<ACCTID>4111111111111111
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240110120000[0:GMT]
<TRNAMT>-45.99
<FITID>CC2024011001
<NAME>BOOKSTORE ONLINE
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-15.00
<FITID>CC2024011501
<NAME>MUSIC STREAMING
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-500.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`

func TestOFXParser_Parse(t *testing.T) {
	tests := []struct {
		name          string
		data          string
		expectedCount int
		expectedError bool
	}{
		{name: "bank statement", data: checkingOFX, expectedCount: 3},
		{name: "credit card statement", data: cardOFX, expectedCount: 2},
		{name: "invalid data", data: "not valid OFX", expectedError: true},
		{name: "empty file", data: "", expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := NewOFXParser().Parse(context.Background(), strings.NewReader(tt.data))

			if tt.expectedError {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrFormat))
				return
			}
			require.NoError(t, err)
			assert.Len(t, result.Transactions, tt.expectedCount)
			assert.Equal(t, tt.expectedCount, result.Processed)
			assert.Zero(t, result.Skipped)
		})
	}
}

func TestOFXParser_BankTransactions(t *testing.T) {
	result, err := NewOFXParser().Parse(context.Background(), strings.NewReader(checkingOFX))
	require.NoError(t, err)
	require.Len(t, result.Transactions, 3)

	coffee := result.Transactions[0]
	assert.Equal(t, "RU2024011501", coffee.ID)
	assert.Equal(t, "COFFEE POINT", coffee.Description)
	assert.Equal(t, "-350.5", coffee.Amount.String())
	assert.Equal(t, "RUB", coffee.Currency)
	assert.True(t, coffee.IsExpense())
	assert.Equal(t, 2024, coffee.Date.Year())
	assert.Equal(t, time.January, coffee.Date.Month())
	assert.Equal(t, 15, coffee.Date.Day())
	assert.NotEmpty(t, coffee.Hash)

	// generic NAME falls back to MEMO
	assert.Equal(t, "PYATEROCHKA 4411", result.Transactions[1].Description)

	salary := result.Transactions[2]
	assert.False(t, salary.IsExpense())
	assert.Equal(t, "100000", salary.Amount.String())
}

func TestOFXParser_CardTransactions(t *testing.T) {
	result, err := NewOFXParser().Parse(context.Background(), strings.NewReader(cardOFX))
	require.NoError(t, err)
	require.Len(t, result.Transactions, 2)

	assert.Equal(t, "CC2024011001", result.Transactions[0].ID)
	assert.Equal(t, "BOOKSTORE ONLINE", result.Transactions[0].Description)
	assert.Equal(t, "-45.99", result.Transactions[0].Amount.String())
	assert.Equal(t, "USD", result.Transactions[0].Currency)
	assert.Equal(t, "-15", result.Transactions[1].Amount.String())
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name     string
		tx       ofxgo.Transaction
		expected string
	}{
		{
			name:     "payee wins",
			tx:       ofxgo.Transaction{Name: "POS", Payee: &ofxgo.Payee{Name: "Bakery"}},
			expected: "Bakery",
		},
		{
			name:     "name trimmed",
			tx:       ofxgo.Transaction{Name: "  TAXI  "},
			expected: "TAXI",
		},
		{
			name:     "generic name uses memo",
			tx:       ofxgo.Transaction{Name: "Card Purchase", Memo: "CINEMA"},
			expected: "CINEMA",
		},
		{
			name:     "nothing usable",
			tx:       ofxgo.Transaction{},
			expected: model.DefaultDescription,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, describe(tt.tx))
		})
	}
}
