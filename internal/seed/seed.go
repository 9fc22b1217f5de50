package seed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/restohub/backend/internal/availability"
	"github.com/restohub/backend/internal/domain"
	"github.com/restohub/backend/internal/repository"
	"github.com/restohub/backend/internal/utils"
)

// CSV 中必须包含的列，day_of_week 一格可以写多个星期，例如 "1, 2, 3"
var RequiredHeaders = []string{"service_name", "day_of_week", "start_time", "end_time", "max_capacity"}

// ParseSlotTemplates 读取 CSV 并展开为时段模板，displayOrder 按行号递增
func ParseSlotTemplates(in io.Reader, establishmentID uuid.UUID) ([]*domain.SlotTemplate, error) {
	reader := csv.NewReader(in)
	reader.TrimLeadingSpace = true

	// 读取表头
	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("读取表头失败: %w", err)
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}
	for _, key := range RequiredHeaders {
		if !slices.Contains(headers, key) {
			return nil, fmt.Errorf("没有找到列 %s", key)
		}
	}

	templates := []*domain.SlotTemplate{}
	line := 1
	for {
		row, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("读取文件失败: %w", err)
		}
		line++

		record := make(map[string]string, len(headers))
		for i, value := range row {
			record[headers[i]] = strings.TrimSpace(value)
		}

		capacity := int64(availability.DefaultMaxCapacity)
		if record["max_capacity"] != "" {
			capacity, err = strconv.ParseInt(record["max_capacity"], 10, 32)
			if err != nil {
				return nil, fmt.Errorf("第 %d 行人数上限无效: %s", line, record["max_capacity"])
			}
		}

		for _, day := range strings.Split(record["day_of_week"], ",") {
			day = strings.TrimSpace(day)
			if day == "" {
				continue
			}

			dayInt, err := strconv.ParseInt(day, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("第 %d 行星期无效: %s", line, day)
			}

			templates = append(templates, &domain.SlotTemplate{
				EstablishmentID: establishmentID,
				DayOfWeek:       int32(dayInt),
				StartTime:       record["start_time"],
				EndTime:         record["end_time"],
				ServiceName:     record["service_name"],
				MaxCapacity:     int32(capacity),
				DisplayOrder:    int32(line - 1),
			})
		}
	}

	return templates, nil
}

// ImportSlotTemplates 把 CSV 中的时段模板导入到指定餐厅，与已有模板冲突的行会被跳过
func ImportSlotTemplates(r *repository.Repository, establishmentID uuid.UUID, path string) {
	file, err := os.Open(path)
	if err != nil {
		slog.Error("打开文件失败", "error", err)
		return
	}
	defer file.Close()

	templates, err := ParseSlotTemplates(file, establishmentID)
	if err != nil {
		slog.Error("解析文件失败", "error", err)
		return
	}

	existing, err := r.GetSlotTemplatesByEstablishment(establishmentID)
	if err != nil {
		slog.Error("获取已有时段模板失败", "error", err)
		return
	}

	cnt := 0
	for _, st := range templates {
		if err := utils.ValidateSlotTemplate(st, existing); err != nil {
			slog.Error("时段模板无效，已跳过", "service", st.ServiceName, "day", st.DayOfWeek, "error", err)
			continue
		}

		if err := r.CreateSlotTemplate(st); err != nil {
			slog.Error("插入时段模板失败", "error", err)
			continue
		}

		existing = append(existing, *st)
		cnt++
	}

	slog.Info("导入时段模板完成", "count", cnt, "total", len(templates))
}
