// 包 geo：统一位置模型与中文行政区划自由文本解析
package geo

// 文档注释：归一化位置（各上游共同收敛的内存模型）
// 背景：各上游返回结构互不兼容（结构化省市字段 vs 携带运营商标注的自由文本），
//      统一收敛为省/市/区划码/展示地址/坐标，转换层再按需渲染回任一原生形态。
// 约束：省与市均非空才算有效记录；无效记录按上游失败处理，绝不对外返回。
type Location struct {
	Province string
	City     string
	Adcode   string
	Address  string
	Point    Point
}

// 坐标点：仅原生返回坐标的上游填充；转换层不得为非原生来源编造坐标
type Point struct {
	X string
	Y string
}

// Valid：省市齐备即有效
func (l Location) Valid() bool {
	return l.Province != "" && l.City != ""
}
