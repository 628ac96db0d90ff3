package directory

import (
	"strconv"
	"strings"

	"github.com/spec-kit/dispatch-service/internal/domain"
	apperrors "github.com/spec-kit/dispatch-service/pkg/util"
)

// Filter captures engineer listing parameters.
type Filter struct {
	Unit       string
	Attendance string
	Years      *int
	MinYears   *int
	MaxYears   *int
}

// Directory is the read-only engineer lookup consumed by the dispatch
// core. Engineers are never created or mutated through this interface.
type Directory interface {
	List(filter Filter) []domain.Engineer
	GetByID(id int) (*domain.Engineer, error)
	GetByName(name string) (*domain.Engineer, error)
	// Resolve accepts either a numeric id or an engineer name, the two
	// identifier forms that appear in assignment references.
	Resolve(identifier string) (*domain.Engineer, bool)
	GroupByUnit() map[string]int
	Size() int
}

type memoryDirectory struct {
	engineers []domain.Engineer
}

// NewMemoryDirectory builds a directory from the given engineers.
func NewMemoryDirectory(engineers []domain.Engineer) Directory {
	return &memoryDirectory{engineers: engineers}
}

func (d *memoryDirectory) List(filter Filter) []domain.Engineer {
	result := make([]domain.Engineer, 0, len(d.engineers))
	for _, eng := range d.engineers {
		if filter.Unit != "" && !strings.Contains(strings.ToLower(eng.Unit), strings.ToLower(filter.Unit)) {
			continue
		}
		if filter.Attendance != "" && eng.Attendance != filter.Attendance {
			continue
		}
		if filter.Years != nil && eng.YearsOfService != *filter.Years {
			continue
		}
		if filter.MinYears != nil && eng.YearsOfService < *filter.MinYears {
			continue
		}
		if filter.MaxYears != nil && eng.YearsOfService > *filter.MaxYears {
			continue
		}
		result = append(result, eng)
	}
	return result
}

func (d *memoryDirectory) GetByID(id int) (*domain.Engineer, error) {
	for i := range d.engineers {
		if d.engineers[i].ID == id {
			eng := d.engineers[i]
			return &eng, nil
		}
	}
	return nil, apperrors.NewNotFound("engineer", map[string]any{"engineer_id": id})
}

func (d *memoryDirectory) GetByName(name string) (*domain.Engineer, error) {
	lowered := strings.ToLower(name)
	for i := range d.engineers {
		if strings.Contains(strings.ToLower(d.engineers[i].Name), lowered) {
			eng := d.engineers[i]
			return &eng, nil
		}
	}
	return nil, apperrors.NewNotFound("engineer", map[string]any{"name": name})
}

func (d *memoryDirectory) Resolve(identifier string) (*domain.Engineer, bool) {
	if identifier == "" {
		return nil, false
	}
	if id, err := strconv.Atoi(identifier); err == nil {
		if eng, lookupErr := d.GetByID(id); lookupErr == nil {
			return eng, true
		}
	}
	for i := range d.engineers {
		if strings.EqualFold(d.engineers[i].Name, identifier) {
			eng := d.engineers[i]
			return &eng, true
		}
	}
	return nil, false
}

func (d *memoryDirectory) GroupByUnit() map[string]int {
	groups := make(map[string]int)
	for _, eng := range d.engineers {
		unit := eng.Unit
		if unit == "" {
			unit = "Unknown"
		}
		groups[unit]++
	}
	return groups
}

func (d *memoryDirectory) Size() int {
	return len(d.engineers)
}
