package directory

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/spec-kit/dispatch-service/internal/domain"
)

// Seed engineers mirror the operational directory: each entry is a name and
// the unit it serves. Attendance and tenure are rolled at startup; the
// directory is volatile by design.
var seedRoster = []struct {
	name string
	unit string
}{
	{"Sandi Prakoso", "Ho Network Specialist"},
	{"Mira Handayani", "Ho Network Specialist"},
	{"Rangga Aditama", "Branches Network Specialist"},
	{"Fitri Nuraini", "Branches Network Specialist"},
	{"Yusuf Pradana", "Echannels Network Specialist"},
	{"Retno Wulandari", "Echannels Network Specialist"},
	{"Bagus Hartono", "Ho Infrastructure Specialist"},
	{"Citra Lestari", "Ho Infrastructure Specialist"},
	{"Dimas Saputra", "Backup Management Specialist"},
	{"Intan Permatasari", "Cloud Coe Specialist"},
	{"Arif Kurniawan", "Data Center Operation Staff Jakarta"},
	{"Putri Maharani", "Data Center Operation Staff Jakarta"},
	{"Hendra Wijaya", "Data Center Supervisor Jakarta"},
	{"Laras Pertiwi", "It Resilience & Contuinity Specialist"},
	{"Teguh Santoso", "Infrastructure Monitoring Specialist"},
	{"Nadia Rahmawati", "Application Monitoring Specialist"},
	{"Galih Pamungkas", "Network Monitoring Specialist"},
	{"Sari Anggraini", "Credit Banking Support Specialist"},
	{"Bayu Nugroho", "Core Banking System Support Specialist"},
	{"Dewi Kusuma", "Core Banking System Support Specialist"},
	{"Rizal Firmansyah", "Enterprise System Support Specialist"},
	{"Maya Safitri", "Treasury & Wholesale Banking Support Specialist"},
	{"Andika Prasetya", "Database Admin Specialist"},
	{"Rina Oktaviani", "Database Admin Specialist"},
	{"Fajar Ramadhan", "Database Admin Specialist"},
	{"Lia Puspitasari", "Change & Release Management Application Specialist"},
	{"Doni Setiawan", "Problem Management Specialist"},
	{"Ayu Widyastuti", "Incident Management Specialist"},
	{"Eko Susanto", "Incident Management Specialist"},
	{"Tania Melati", "Request Management Specialist"},
	{"Wahyu Hidayat", "Helpdesk Officer"},
	{"Siska Amelia", "It Knowledge Management Specialist"},
	{"Raka Mahendra", "Front End & Mobile App Specialist"},
	{"Vina Astuti", "Integration & Microservices Specialist"},
	{"Ilham Maulana", "Digital Back End Specialist"},
	{"Karin Salsabila", "Branch End Point Specialist"},
	{"Yoga Pratama", "Ho End Point Specialist"},
	{"Nanda Febriani", "Software End Point Specialist"},
}

// NewSeededDirectory builds the default in-memory directory with derived
// email addresses on the given domain.
func NewSeededDirectory(emailDomain string) Directory {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	engineers := make([]domain.Engineer, 0, len(seedRoster))
	for idx, entry := range seedRoster {
		attendance := "bekerja"
		if rng.Float64() < 0.5 {
			attendance = "cuti"
		}
		engineers = append(engineers, domain.Engineer{
			ID:             idx + 1,
			Name:           entry.name,
			Unit:           entry.unit,
			Email:          DeriveEmail(entry.name, emailDomain),
			Attendance:     attendance,
			YearsOfService: rng.Intn(10) + 1,
		})
	}
	return NewMemoryDirectory(engineers)
}

// DeriveEmail builds first.last@domain from an engineer name, keeping only
// letters and collapsing whitespace to single dots.
func DeriveEmail(name, domain string) string {
	lowered := strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	lastDot := false
	for _, r := range lowered {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
			lastDot = false
		case r == ' ' || r == '\t':
			if b.Len() > 0 && !lastDot {
				b.WriteRune('.')
				lastDot = true
			}
		}
	}
	local := strings.Trim(b.String(), ".")
	if local == "" {
		return fmt.Sprintf("engineer@%s", domain)
	}
	return fmt.Sprintf("%s@%s", local, domain)
}
