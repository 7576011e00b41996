/*
Copyright 2025 Fathom Energy Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package model

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/fathomenergy/curvetrace/database"
	"github.com/fathomenergy/curvetrace/model"
)

func (d *CreateDefinition) ValidateCreateDefinition() error {
	return validation.ValidateStruct(d,
		validation.Field(&d.Market, validation.Required),
		validation.Field(&d.Location, validation.Required),
		validation.Field(&d.Product, validation.Required),
		validation.Field(&d.CurveType, validation.Required),
		validation.Field(&d.DurationClass, validation.Required),
	)
}

func (d *CreateDefinition) ToDefinition() model.Definition {
	scenario := d.Scenario
	if scenario == "" {
		scenario = "BASE"
	}
	timezone := d.Timezone
	if timezone == "" {
		timezone = "UTC"
	}
	return model.Definition{
		Market:        d.Market,
		Location:      d.Location,
		Product:       d.Product,
		CurveType:     d.CurveType,
		DurationClass: d.DurationClass,
		Scenario:      scenario,
		Units:         d.Units,
		Timezone:      timezone,
		MetaData:      d.MetaData,
	}
}

func (i *CreateInstance) ValidateCreateInstance() error {
	return validation.ValidateStruct(i,
		validation.Field(&i.DefinitionID, validation.Required),
		validation.Field(&i.PeriodStart, validation.Required),
		validation.Field(&i.PeriodEnd, validation.Required),
		validation.Field(&i.PeriodEnd, validation.By(func(interface{}) error {
			if !i.PeriodEnd.After(i.PeriodStart) {
				return errors.New("period_end must be after period_start")
			}
			return nil
		})),
	)
}

func (i *CreateInstance) ToRequest() *database.CreateInstanceRequest {
	req := &database.CreateInstanceRequest{
		DefinitionID:   i.DefinitionID,
		PeriodStart:    i.PeriodStart,
		PeriodEnd:      i.PeriodEnd,
		Status:         i.Status,
		Version:        i.Version,
		IdempotencyKey: i.IdempotencyKey,
		ChangeType:     i.ChangeType,
		Reason:         i.Reason,
		Actor:          i.Actor,
		MetaData:       i.MetaData,
	}
	if i.ForecastRunAt != nil {
		req.ForecastRunAt = *i.ForecastRunAt
	}
	return req
}

func (r *IngestDataRows) ValidateIngestDataRows() error {
	if len(r.Rows) == 0 {
		return errors.New("rows is required and must not be empty")
	}
	for i := range r.Rows {
		row := &r.Rows[i]
		err := validation.ValidateStruct(row,
			validation.Field(&row.Timestamp, validation.Required),
			validation.Field(&row.CurveType, validation.Required),
			validation.Field(&row.Commodity, validation.Required),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *IngestDataRows) ToDataRows() []model.DataRow {
	rows := make([]model.DataRow, 0, len(r.Rows))
	for _, input := range r.Rows {
		scenario := input.Scenario
		if scenario == "" {
			scenario = "BASE"
		}
		rows = append(rows, model.DataRow{
			Timestamp: input.Timestamp,
			Value:     input.Value,
			CurveType: input.CurveType,
			Commodity: input.Commodity,
			Scenario:  scenario,
			Units:     input.Units,
		})
	}
	return rows
}

func (f *SetGroupFreshness) ValidateSetGroupFreshness() error {
	return validation.ValidateStruct(f,
		validation.Field(&f.CurveType, validation.Required),
		validation.Field(&f.Commodity, validation.Required),
		validation.Field(&f.Start, validation.Required),
	)
}

func (s *SupersedeGroup) ValidateSupersedeGroup() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.CurveType, validation.Required),
		validation.Field(&s.Commodity, validation.Required),
		validation.Field(&s.End, validation.Required),
	)
}

func (u *UpdateInstanceStatus) ValidateUpdateInstanceStatus() error {
	return validation.ValidateStruct(u,
		validation.Field(&u.Status, validation.Required),
	)
}

func (s *CreateSchedule) ValidateCreateSchedule() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.DefinitionID, validation.Required),
		validation.Field(&s.Frequency, validation.Required),
		validation.Field(&s.ValidFrom, validation.Required),
		validation.Field(&s.Importance, validation.Required, validation.Min(1), validation.Max(5)),
	)
}

func (s *CreateSchedule) ToSchedule() model.Schedule {
	return model.Schedule{
		DefinitionID:    s.DefinitionID,
		Frequency:       s.Frequency,
		DayOfWeek:       s.DayOfWeek,
		DayOfMonth:      s.DayOfMonth,
		LeadTimeDays:    s.LeadTimeDays,
		FreshnessDays:   s.FreshnessDays,
		ValidFrom:       s.ValidFrom,
		ResponsibleTeam: s.ResponsibleTeam,
		Importance:      s.Importance,
	}
}

func (s *UpdateSchedule) ValidateUpdateSchedule() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.Frequency, validation.Required),
		validation.Field(&s.ValidFrom, validation.Required),
		validation.Field(&s.Importance, validation.Required, validation.Min(1), validation.Max(5)),
	)
}

func (s *UpdateSchedule) ApplyTo(schedule *model.Schedule) {
	schedule.Frequency = s.Frequency
	schedule.DayOfWeek = s.DayOfWeek
	schedule.DayOfMonth = s.DayOfMonth
	schedule.LeadTimeDays = s.LeadTimeDays
	schedule.FreshnessDays = s.FreshnessDays
	schedule.ValidFrom = s.ValidFrom
	schedule.ResponsibleTeam = s.ResponsibleTeam
	schedule.Importance = s.Importance
}

func (r *RecordScheduleRun) ValidateRecordScheduleRun() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ExpectedAt, validation.Required),
	)
}

func (r *ResolveScheduleRun) ValidateResolveScheduleRun() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ActualAt, validation.Required),
	)
}

func (l *RecordLineage) ToLineageRecords() []model.LineageRecord {
	records := make([]model.LineageRecord, 0, len(l.Inputs))
	for _, input := range l.Inputs {
		records = append(records, model.LineageRecord{
			InputType:      input.InputType,
			Source:         input.Source,
			Identifier:     input.Identifier,
			InputVersion:   input.InputVersion,
			InputTimestamp: input.InputTimestamp,
			UsageType:      input.UsageType,
			Weight:         input.Weight,
		})
	}
	return records
}

func (s *SetDefinitionInputs) ToDefinitionInputs() []model.DefinitionInput {
	inputs := make([]model.DefinitionInput, 0, len(s.Inputs))
	for _, item := range s.Inputs {
		inputs = append(inputs, model.DefinitionInput{
			InputType: item.InputType,
			Source:    item.Source,
			UsageType: item.UsageType,
		})
	}
	return inputs
}

func (m *MergeRequest) ValidateMergeRequest() error {
	return validation.ValidateStruct(m,
		validation.Field(&m.TempDefinitionID, validation.Required),
		validation.Field(&m.TargetDefinitionID, validation.Required),
	)
}
