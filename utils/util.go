package utils

// Find 找出ID对应的数据
// 如果ids为空则返回所有数据，
// 如果不存在则将失败ID记录到失败列表中。
func Find[K comparable, T any](dataMap map[K]T, data []T, ids []K) (okData []T, failedIDs []K) {
	if len(ids) == 0 {
		return data, nil
	}
	okData = make([]T, 0, len(ids))
	failedIDs = make([]K, 0, len(ids))
	for _, id := range ids {
		if d, ok := dataMap[id]; ok {
			okData = append(okData, d)
		} else {
			failedIDs = append(failedIDs, id)
		}
	}
	return
}
