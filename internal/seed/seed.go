// Package seed loads the reference data a fresh deployment needs: service
// categories, the admin account and a handful of community tips.
package seed

import (
	"context"
	"time"

	"roadrescue/internal/domain/entity"
	"roadrescue/internal/domain/repository"
	"roadrescue/internal/usecase"
	"roadrescue/pkg/logger"
)

var DefaultCategories = []entity.ServiceCategory{
	{Key: "FUEL", Name: "Cứu hộ hết xăng", Description: "Tiếp nhiên liệu tại chỗ"},
	{Key: "TIRE", Name: "Cứu hộ thủng lốp", Description: "Vá lốp/thay lốp"},
	{Key: "BATTERY", Name: "Cứu hộ hết ắc quy", Description: "Kích bình/nạp điện"},
	{Key: "TOW", Name: "Kéo xe", Description: "Kéo xe về gara/điểm chỉ định"},
	{Key: "LOCKOUT", Name: "Mở khóa xe", Description: "Quên chìa/khóa trong xe"},
}

type tip struct {
	Title    string
	Solution string
}

var defaultTips = []tip{
	{
		Title:    "Xe hết xăng giữa đường",
		Solution: "Bật đèn cảnh báo (nếu có), dắt xe vào lề an toàn. Kiểm tra xem có cây xăng gần đó không. Nếu đang ở nơi vắng/đêm, ưu tiên gọi cứu hộ. Không để xe chắn làn đường. Nếu phải đứng chờ, đứng ở vị trí an toàn và quan sát xe cộ.",
	},
	{
		Title:    "Xe bị thủng lốp khi đang chạy",
		Solution: "Giảm ga từ từ, không phanh gấp. Tấp vào lề an toàn. Kiểm tra lốp có dính đinh/vật nhọn, không rút vật ra nếu lốp xẹp nhanh. Nếu có đồ vá khẩn cấp/bơm mini thì xử lý tạm, sau đó đến tiệm vá. Nếu lốp rách lớn hoặc không có dụng cụ, gọi cứu hộ.",
	},
	{
		Title:    "Xe không đề được (nghi yếu bình ắc quy)",
		Solution: "Kiểm tra đèn/còi có yếu không. Thử tắt hết phụ tải (đèn, sạc), đề lại. Nếu xe số: thử đạp nổ/đẩy nổ nếu bạn biết làm và an toàn. Nếu xe tay ga/ô tô: cần kích bình hoặc cứu hộ. Tránh đề liên tục nhiều lần gây nóng đề.",
	},
	{
		Title:    "Xe chết máy sau khi đi qua đoạn ngập nhẹ",
		Solution: "Tắt máy ngay, không cố đề lại nhiều lần. Dắt xe ra chỗ khô. Kiểm tra lọc gió/ống hút gió có bị ướt, lau khô khu vực bugi/cổ hút nếu có thể. Chờ 10-20 phút cho ráo rồi thử lại. Nếu nghi vào nước nặng, gọi cứu hộ để tránh hỏng nặng.",
	},
	{
		Title:    "Xe bị nóng máy/bốc mùi khét",
		Solution: "Tấp vào lề, tắt máy và để nguội 10-15 phút. Kiểm tra nước làm mát hoặc dầu nhớt có rò rỉ. Không mở nắp két nước khi máy còn nóng. Nếu nhiệt độ vẫn cao hoặc có khói, không chạy tiếp mà gọi cứu hộ/kéo xe.",
	},
	{
		Title:    "Xe bị khóa cổ/kẹt khóa hoặc mất chìa",
		Solution: "Không cố bẻ khóa vì dễ hỏng nặng và nguy hiểm. Nếu có chìa dự phòng thì dùng. Nếu không, gọi thợ khóa/cứu hộ. Khi chờ, dắt xe vào nơi an toàn và giữ giấy tờ xe để xác minh quyền sở hữu.",
	},
}

// Categories upserts DefaultCategories by key, so reruns are harmless.
// Existing rows keep their creation time.
func Categories(ctx context.Context, repo repository.CategoryRepository, now time.Time) (int, error) {
	for _, def := range DefaultCategories {
		c := def
		c.IsActive = true
		c.CreatedAt = now
		c.UpdatedAt = now
		if err := repo.Upsert(ctx, &c); err != nil {
			return 0, err
		}
	}

	all, err := repo.List(ctx, false)
	if err != nil {
		return 0, err
	}
	return len(all), nil
}

// Admin creates the admin account unless the email is already taken.
func Admin(ctx context.Context, auth *usecase.AuthUseCase, email, password string) (*entity.User, error) {
	admin, created, err := auth.EnsureAdmin(ctx, email, password, "System Admin")
	if err != nil {
		return nil, err
	}
	if created {
		logger.Info("Seeded admin: %s", admin.Email)
	} else {
		logger.Info("Admin already exists: %s", admin.Email)
	}
	return admin, nil
}

// Tips adds each default tip whose title is not present yet, authored by
// authorID. It returns the number of tips created.
func Tips(ctx context.Context, tips repository.CommunityTipRepository, community *usecase.CommunityUseCase, authorID string) (int, error) {
	existing, err := tips.List(ctx)
	if err != nil {
		return 0, err
	}
	titles := make(map[string]bool, len(existing))
	for _, t := range existing {
		titles[t.Title] = true
	}

	created := 0
	for _, t := range defaultTips {
		if titles[t.Title] {
			continue
		}
		if _, err := community.CreateTip(ctx, authorID, t.Title, t.Solution); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}
