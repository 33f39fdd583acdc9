package inout

// LoginReq 管理员登录请求
type LoginReq struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// LoginResp 管理员登录响应
type LoginResp struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}
