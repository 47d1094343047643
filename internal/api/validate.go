package api

import "strconv"

// IsValidIPv4：点分四段、每段 0–255、纯数字且无前导零；拒绝其余一切形态
// 背景：进入任何上游调用前的唯一入口校验，兼做恶意输入（注入类）的第一道闸
// 约束：前导零一律拒绝（"01.2.3.4" 在不同解析器下有八进制歧义）；不接受 IPv6
func IsValidIPv4(ip string) bool {
	part := 0
	start := 0
	for i := 0; i <= len(ip); i++ {
		if i == len(ip) || ip[i] == '.' {
			if !validOctet(ip[start:i]) {
				return false
			}
			part++
			start = i + 1
			continue
		}
		if ip[i] < '0' || ip[i] > '9' {
			return false
		}
	}
	return part == 4
}

func validOctet(s string) bool {
	if s == "" || len(s) > 3 {
		return false
	}
	if len(s) > 1 && s[0] == '0' {
		return false
	}
	n, err := strconv.Atoi(s)
	return err == nil && n <= 255
}
