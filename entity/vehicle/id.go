package vehicle

import (
	"fmt"
	"strconv"
	"strings"
)

// 车辆分组（车道或车辆类型）
const (
	GroupBikes = "bikes"
	GroupL     = "L"
	GroupR     = "R"
	GroupSweep = "sweep"
	GroupPace  = "pace"
)

// 跨周期拆分产生的片段
const (
	PartWhole        = ""
	PartStub         = "stub"
	PartContinuation = "cont"
)

// ID 车辆标识
// 说明：拆分后的两个片段共用Tunnel/Group/Index，以Part区分
type ID struct {
	Tunnel string // 所属隧道名
	Group  string // 车道或车辆类型
	Index  int    // 组内序号（按到达顺序）
	Part   string // 拆分片段
}

// String 形如"E/R/3"或"E/bikes/0~cont"
func (id ID) String() string {
	s := fmt.Sprintf("%s/%s/%d", id.Tunnel, id.Group, id.Index)
	if id.Part != PartWhole {
		s += "~" + id.Part
	}
	return s
}

// WithPart 同一车辆的另一个片段
func (id ID) WithPart(part string) ID {
	id.Part = part
	return id
}

// ParseID 解析String()的输出
func ParseID(s string) (ID, error) {
	var id ID
	body, part, found := strings.Cut(s, "~")
	if found {
		if part != PartStub && part != PartContinuation {
			return id, fmt.Errorf("vehicle id %q: unknown part %q", s, part)
		}
		id.Part = part
	}
	fields := strings.Split(body, "/")
	if len(fields) != 3 || fields[0] == "" || fields[1] == "" {
		return id, fmt.Errorf("vehicle id %q: expect tunnel/group/index", s)
	}
	index, err := strconv.Atoi(fields[2])
	if err != nil || index < 0 {
		return id, fmt.Errorf("vehicle id %q: bad index %q", s, fields[2])
	}
	id.Tunnel, id.Group, id.Index = fields[0], fields[1], index
	return id, nil
}
