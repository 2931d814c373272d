package startup

import (
	"fmt"

	"github.com/SlpAus/oogiri-battle-backend/internal/models"
	"github.com/SlpAus/oogiri-battle-backend/internal/platform/database"
)

// InitializeApplication 执行应用首次启动的初始化流程
// 目前只有表结构迁移，保持幂等，可以在每次启动时安全执行
func InitializeApplication() error {
	err := database.DB.AutoMigrate(&models.Topic{}, &models.Answer{}, &models.Vote{})
	if err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}
	fmt.Println("数据库迁移成功！")

	return nil
}
