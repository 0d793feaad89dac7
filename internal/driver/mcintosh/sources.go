// internal/driver/mcintosh/sources.go
package mcintosh

// Source groups used to organise inputs
const (
	SourceGroupHDMI    = "hdmi"
	SourceGroupDigital = "digital"
	SourceGroupAnalog  = "analog"
)

// sourceNames is the input table shared by all supported models
var sourceNames = [...]string{
	"HDMI 1",
	"HDMI 2",
	"HDMI 3",
	"HDMI 4",
	"HDMI 5",
	"HDMI 6",
	"HDMI 7",
	"HDMI 8",
	"Audio Return",
	"SPDIF 1 (Optical)",
	"SPDIF 2 (Optical)",
	"SPDIF 3 (Optical)",
	"SPDIF 4 (Optical)",
	"SPDIF 5 (AES/EBU)",
	"SPDIF 6 (Coaxial)",
	"SPDIF 7 (Coaxial)",
	"SPDIF 8 (Coaxial)",
	"USB Audio",
	"Analog 1",
	"Analog 2",
	"Analog 3",
	"Analog 4",
	"Balanced 1",
	"Balanced 2",
	"Phono",
	"8 Channel Analog",
}

var sourceGroups = map[string][2]int{
	SourceGroupHDMI:    {0, 7},
	SourceGroupDigital: {8, 17},
	SourceGroupAnalog:  {18, 25},
}

// SourceCount is the number of selectable inputs
const SourceCount = len(sourceNames)

// SourceName returns the table name for index
func SourceName(index int) (string, bool) {
	if index < 0 || index >= len(sourceNames) {
		return "", false
	}
	return sourceNames[index], true
}

// SourceGroup returns the group an input belongs to
func SourceGroup(index int) string {
	for group, r := range sourceGroups {
		if index >= r[0] && index <= r[1] {
			return group
		}
	}
	return ""
}

// SourceGroupIndexes returns the inputs of group in ascending order
func SourceGroupIndexes(group string) []int {
	r, ok := sourceGroups[group]
	if !ok {
		return nil
	}
	indexes := make([]int, 0, r[1]-r[0]+1)
	for i := r[0]; i <= r[1]; i++ {
		indexes = append(indexes, i)
	}
	return indexes
}
