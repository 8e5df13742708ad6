package oauth

import "encoding/json"

type googleUserInfo struct {
	Sub string `json:"sub"`
}

type kakaoUserInfo struct {
	ID json.Number `json:"id"`
}

type naverUserInfo struct {
	ResultCode string `json:"resultcode"`
	Message    string `json:"message"`
	Response   struct {
		ID string `json:"id"`
	} `json:"response"`
}
