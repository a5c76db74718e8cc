package sink

import (
	"encoding/json"
	"os"

	"eventledger/models"
)

// JSONFile 把交易整体写入一个 JSON 文件
type JSONFile struct {
	filename string
}

func NewJSONFile(filename string) *JSONFile {
	return &JSONFile{filename: filename}
}

func (f *JSONFile) Write(txs []*models.Transaction) error {
	if txs == nil {
		txs = []*models.Transaction{}
	}
	data, err := json.MarshalIndent(txs, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.filename, data, 0644)
}
