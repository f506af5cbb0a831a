package reaper

import "errors"

// ErrSchedule возвращается, когда задачу не удалось добавить в расписание
var ErrSchedule = errors.New("reaper: failed to schedule job")
