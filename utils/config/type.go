package config

// Input 从MongoDB读取隧道定义的配置项
// 说明：设置URI后，tunnels列表从{db}.{col}中加载，文件中的tunnels被忽略
type Input struct {
	URI string `yaml:"uri"` // MongoDB连接字符串
	DB  string `yaml:"db"`  // 数据库名
	Col string `yaml:"col"` // 集合名
}

// Layout 画面几何配置（像素）
// 功能：描述隧道、车道、排队区在画面中的尺寸
// 说明：响应式缩放时只替换Layout，由Tunnel.Reconfigure整体重建轨迹
type Layout struct {
	Width         float64 `yaml:"width" bson:"width"`                     // 隧道长度
	LaneHeight    float64 `yaml:"lane_height" bson:"lane_height"`         // 车道宽度（纵向）
	Gap           float64 `yaml:"gap" bson:"gap"`                         // 两个方向隧道之间的间距
	FadeDist      float64 `yaml:"fade_dist" bson:"fade_dist"`             // 入口前/出口后的淡入淡出距离
	PenMargin     float64 `yaml:"pen_margin" bson:"pen_margin"`           // 自行车等候区与入口的距离
	PenSlotWidth  float64 `yaml:"pen_slot_width" bson:"pen_slot_width"`   // 等候区格子宽
	PenSlotHeight float64 `yaml:"pen_slot_height" bson:"pen_slot_height"` // 等候区格子高
	CarGap        float64 `yaml:"car_gap" bson:"car_gap"`                 // 排队车辆间距
}

// Phases 相位边界（相对分钟）
// 说明：bikes-enter固定从0开始，依次为clearing、sweep、pace-car、normal，normal持续到周期结束
type Phases struct {
	Clearing float64 `yaml:"clearing" bson:"clearing"`
	Sweep    float64 `yaml:"sweep" bson:"sweep"`
	Pace     float64 `yaml:"pace" bson:"pace"`
	Normal   float64 `yaml:"normal" bson:"normal"`
}

// Bikes 自行车配置
type Bikes struct {
	PerMin         float64 `yaml:"per_min" bson:"per_min"`                   // 到达速率（辆/分钟）
	ReleasedPerMin float64 `yaml:"released_per_min" bson:"released_per_min"` // 等候区放行速率（辆/分钟）
	PenClose       float64 `yaml:"pen_close" bson:"pen_close"`               // 放行窗口[0, pen_close)
	Mph            float64 `yaml:"mph" bson:"mph"`                           // 骑行速度
	PenCols        int     `yaml:"pen_cols" bson:"pen_cols"`                 // 等候区每行格子数
	PenRows        int     `yaml:"pen_rows" bson:"pen_rows"`                 // 等候区行数
}

// Cars 汽车配置
type Cars struct {
	PerMin         float64 `yaml:"per_min" bson:"per_min"`                   // 每条车道的到达速率（辆/分钟）
	ReleasedPerMin float64 `yaml:"released_per_min" bson:"released_per_min"` // R车道排队放行速率（辆/分钟）
	Mph            float64 `yaml:"mph" bson:"mph"`                           // 行驶速度
	LOffset        float64 `yaml:"l_offset" bson:"l_offset"`                 // L车道首辆车的到达分钟
	ROffset        float64 `yaml:"r_offset" bson:"r_offset"`                 // R车道首辆车的到达分钟
	MergeMins      float64 `yaml:"merge_mins" bson:"merge_mins"`             // 并道用时（分钟）
}

// Escort 清道车/领航车配置
type Escort struct {
	Mph float64 `yaml:"mph" bson:"mph"`
}

// Tunnel 单方向隧道配置
type Tunnel struct {
	Name      string  `yaml:"name" bson:"name"`
	Direction string  `yaml:"direction" bson:"direction"` // east|west
	Offset    float64 `yaml:"offset" bson:"offset"`       // 相对分钟0对应的绝对分钟
	LengthMi  float64 `yaml:"length_mi" bson:"length_mi"` // 隧道长度（英里）
	Phases    Phases  `yaml:"phases" bson:"phases"`
	Bikes     Bikes   `yaml:"bikes" bson:"bikes"`
	Cars      Cars    `yaml:"cars" bson:"cars"`
	Sweep     Escort  `yaml:"sweep" bson:"sweep"`
	Pace      Escort  `yaml:"pace" bson:"pace"`
}

// Config YAML配置文件的根结构
type Config struct {
	Period  float64  `yaml:"period"`          // 周期（分钟）
	Layout  Layout   `yaml:"layout"`          // 画面几何
	Input   *Input   `yaml:"input,omitempty"` // 可选：从MongoDB加载tunnels
	Tunnels []Tunnel `yaml:"tunnels"`         // 隧道列表
}
