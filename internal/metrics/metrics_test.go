package metrics

import "testing"

func TestSnapshot_ZeroPriorityReportsZero(t *testing.T) {
	r := NewRecorder()
	r.RecordDelivery(1, 65)
	s := r.Snapshot()

	if s.AvgDeliveryByPriority[1] != 65 {
		t.Errorf("priority 1 avg = %v, want 65", s.AvgDeliveryByPriority[1])
	}
	if s.AvgDeliveryByPriority[2] != 0 {
		t.Errorf("priority 2 avg = %v, want 0", s.AvgDeliveryByPriority[2])
	}
	if s.AvgDeliveryByPriority[3] != 0 {
		t.Errorf("priority 3 avg = %v, want 0", s.AvgDeliveryByPriority[3])
	}
}

func TestSnapshot_AveragesAcrossMultipleDeliveries(t *testing.T) {
	r := NewRecorder()
	r.RecordDelivery(2, 10)
	r.RecordDelivery(2, 20)
	s := r.Snapshot()
	if s.AvgDeliveryByPriority[2] != 15 {
		t.Errorf("priority 2 avg = %v, want 15", s.AvgDeliveryByPriority[2])
	}
	if s.DeliveredCount != 2 {
		t.Errorf("DeliveredCount = %d, want 2", s.DeliveredCount)
	}
}

func TestRecordCharge_MonotonicPerAGV(t *testing.T) {
	r := NewRecorder()
	r.RecordCharge("agv_1")
	r.RecordCharge("agv_1")
	r.RecordCharge("agv_2")
	s := r.Snapshot()

	if s.ChargeCounts["agv_1"] != 2 {
		t.Errorf("agv_1 charge count = %d, want 2", s.ChargeCounts["agv_1"])
	}
	if s.ChargeCounts["agv_2"] != 1 {
		t.Errorf("agv_2 charge count = %d, want 1", s.ChargeCounts["agv_2"])
	}

	ids := s.AGVIDsByChargeCount()
	if len(ids) != 2 || ids[0] != "agv_1" || ids[1] != "agv_2" {
		t.Errorf("AGVIDsByChargeCount() = %v, want sorted [agv_1 agv_2]", ids)
	}
}

func TestSnapshot_Makespan(t *testing.T) {
	r := NewRecorder()
	r.SetMakespan(65)
	s := r.Snapshot()
	if s.MakespanMinutes != 65 {
		t.Errorf("MakespanMinutes = %d, want 65", s.MakespanMinutes)
	}
}
