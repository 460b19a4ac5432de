package reports

import (
	"encoding/json"
	"fmt"

	"github.com/VXerys/artconnect-crm-sub001/internal/groq"
)

const systemPrompt = `Anda adalah analis bisnis untuk seniman visual independen di Indonesia.
Tulis laporan yang ringkas, jelas dan dapat ditindaklanjuti dalam Bahasa Indonesia.
Gunakan format mata uang Rupiah (contoh: Rp 1.250.000).
Jawab HANYA dengan satu objek JSON yang valid, tanpa teks lain dan tanpa blok kode, dengan struktur:
{
  "title": "string",
  "summary": "string",
  "sections": [
    {
      "title": "string",
      "content": "string",
      "metrics": [{"label": "string", "value": "string", "change": "string"}]
    }
  ],
  "recommendations": ["string"]
}`

var focusByType = map[string]string{
	"sales":         "Fokus pada kinerja penjualan, tren pendapatan bulanan dan harga.",
	"inventory":     "Fokus pada status inventaris, nilai karya dan karya yang paling diminati.",
	"network":       "Fokus pada pertumbuhan jaringan kontak dan sumber trafik portofolio.",
	"comprehensive": "Bahas penjualan, inventaris, jaringan dan trafik secara menyeluruh.",
}

// BuildMessages returns the chat messages asking the model for a report on data.
func BuildMessages(data ReportData) ([]groq.Message, error) {
	payload, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report data: %w", err)
	}

	user := fmt.Sprintf("Buat laporan %s untuk periode %s.\n%s\n\nData:\n%s",
		data.Type.Label(),
		FormatPeriod(data.PeriodStart, data.PeriodEnd),
		focusByType[string(data.Type)],
		payload,
	)

	return []groq.Message{
		{Role: groq.RoleSystem, Content: systemPrompt},
		{Role: groq.RoleUser, Content: user},
	}, nil
}
