package repository

import (
	"context"
	"sync"
	"testing"

	"meetingRoomBooking/internal/booking"
	"meetingRoomBooking/internal/testutil"
	"meetingRoomBooking/models"
)

func seedBooking(t *testing.T, r *BookingRepository, userID int64, date, start, end string) int64 {
	t.Helper()
	id, err := r.Insert(context.Background(), &models.Booking{
		UserID: userID, Date: date, Start: start, End: end, Attendees: 3, Purpose: "standup",
	})
	if err != nil {
		t.Fatalf("seed booking %s %s-%s: %v", date, start, end, err)
	}
	return id
}

func TestBookingRepository_CRUD(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "booking_crud")
	u := testutil.InsertUser(t, d, "202411001", "Dana Wu", "", models.RoleUser)
	r := NewBookingRepository(d)
	ctx := context.Background()

	id := seedBooking(t, r, u.ID, "2026-09-01", "09:00", "10:00")

	got, err := r.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil {
		t.Fatal("GetByID returned nil for existing booking")
	}
	if got.Start != "09:00" || got.End != "10:00" || got.Date != "2026-09-01" {
		t.Errorf("unexpected booking fields: %+v", got)
	}
	if got.OwnerName != "Dana Wu" || got.OwnerStudentID != "202411001" {
		t.Errorf("owner fields not joined: %+v", got)
	}

	got.Purpose = "retro"
	got.End = "10:30"
	found, err := r.Update(ctx, got)
	if err != nil || !found {
		t.Fatalf("Update: found=%v err=%v", found, err)
	}
	got, err = r.GetByID(ctx, id)
	if err != nil || got.End != "10:30" || got.Purpose != "retro" {
		t.Fatalf("update not persisted: %+v err=%v", got, err)
	}

	found, err = r.Delete(ctx, id)
	if err != nil || !found {
		t.Fatalf("Delete: found=%v err=%v", found, err)
	}
	found, err = r.Delete(ctx, id)
	if err != nil {
		t.Fatalf("repeat Delete: %v", err)
	}
	if found {
		t.Error("repeat Delete reported a row")
	}

	got, err = r.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID after delete: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil after delete, got %+v", got)
	}
}

func TestBookingRepository_FindOverlapping(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "booking_overlap")
	u := testutil.InsertUser(t, d, "202411002", "Omar Haddad", "", models.RoleUser)
	r := NewBookingRepository(d)
	ctx := context.Background()

	id := seedBooking(t, r, u.ID, "2026-09-01", "09:00", "10:00")

	cases := []struct {
		name       string
		start, end string
		want       int
	}{
		{"identical", "09:00", "10:00", 1},
		{"contained", "09:15", "09:45", 1},
		{"straddles start", "08:30", "09:30", 1},
		{"straddles end", "09:30", "10:30", 1},
		{"touches before", "08:00", "09:00", 0},
		{"touches after", "10:00", "11:00", 0},
		{"disjoint", "11:00", "12:00", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := r.FindOverlapping(ctx, "2026-09-01", tc.start, tc.end, 0)
			if err != nil {
				t.Fatalf("FindOverlapping: %v", err)
			}
			if len(got) != tc.want {
				t.Errorf("[%s,%s): got %d blockers, want %d", tc.start, tc.end, len(got), tc.want)
			}
		})
	}

	// Other dates never collide.
	got, err := r.FindOverlapping(ctx, "2026-09-02", "09:00", "10:00", 0)
	if err != nil || len(got) != 0 {
		t.Errorf("different date: got %d blockers err=%v", len(got), err)
	}

	// Excluding the booking itself hides it from its own check.
	got, err = r.FindOverlapping(ctx, "2026-09-01", "09:00", "10:00", id)
	if err != nil || len(got) != 0 {
		t.Errorf("excluded self: got %d blockers err=%v", len(got), err)
	}
}

func TestBookingRepository_InsertIfFree(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "booking_insert_if_free")
	u := testutil.InsertUser(t, d, "202411003", "Priya Nair", "", models.RoleUser)
	r := NewBookingRepository(d)
	ctx := context.Background()

	id, blockers, err := r.InsertIfFree(ctx, &models.Booking{
		UserID: u.ID, Date: "2026-09-03", Start: "13:00", End: "14:00", Attendees: 4, Purpose: "review",
	})
	if err != nil || len(blockers) != 0 || id == 0 {
		t.Fatalf("free slot: id=%d blockers=%d err=%v", id, len(blockers), err)
	}

	id2, blockers, err := r.InsertIfFree(ctx, &models.Booking{
		UserID: u.ID, Date: "2026-09-03", Start: "13:30", End: "14:30", Attendees: 2, Purpose: "clash",
	})
	if err != nil {
		t.Fatalf("blocked insert: %v", err)
	}
	if id2 != 0 || len(blockers) != 1 {
		t.Fatalf("expected one blocker and no id, got id=%d blockers=%d", id2, len(blockers))
	}
	if blockers[0].ID != id {
		t.Errorf("blocker id = %d, want %d", blockers[0].ID, id)
	}

	// Nothing was written on the blocked path.
	rows, err := r.ListByDate(ctx, "2026-09-03")
	if err != nil {
		t.Fatalf("ListByDate: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("expected 1 booking after blocked insert, got %d", len(rows))
	}

	// A touching slot goes through.
	id3, blockers, err := r.InsertIfFree(ctx, &models.Booking{
		UserID: u.ID, Date: "2026-09-03", Start: "14:00", End: "15:00", Attendees: 2, Purpose: "followup",
	})
	if err != nil || len(blockers) != 0 || id3 == 0 {
		t.Fatalf("touching slot: id=%d blockers=%d err=%v", id3, len(blockers), err)
	}
}

func TestBookingRepository_UpdateIfFree(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "booking_update_if_free")
	u := testutil.InsertUser(t, d, "202411004", "Lena Fischer", "", models.RoleUser)
	r := NewBookingRepository(d)
	ctx := context.Background()

	idA := seedBooking(t, r, u.ID, "2026-09-04", "09:00", "10:00")
	seedBooking(t, r, u.ID, "2026-09-04", "11:00", "12:00")

	// Shifting A within free space succeeds; the check ignores A itself.
	found, blockers, err := r.UpdateIfFree(ctx, &models.Booking{
		ID: idA, UserID: u.ID, Date: "2026-09-04", Start: "09:30", End: "10:30", Attendees: 3, Purpose: "moved",
	})
	if err != nil || !found || len(blockers) != 0 {
		t.Fatalf("free move: found=%v blockers=%d err=%v", found, len(blockers), err)
	}

	// Moving A onto B is blocked and leaves A untouched.
	found, blockers, err = r.UpdateIfFree(ctx, &models.Booking{
		ID: idA, UserID: u.ID, Date: "2026-09-04", Start: "11:30", End: "12:30", Attendees: 3, Purpose: "clash",
	})
	if err != nil {
		t.Fatalf("blocked move: %v", err)
	}
	if found || len(blockers) != 1 {
		t.Fatalf("expected block, got found=%v blockers=%d", found, len(blockers))
	}
	got, err := r.GetByID(ctx, idA)
	if err != nil || got.Start != "09:30" {
		t.Fatalf("blocked move changed the row: %+v err=%v", got, err)
	}

	// Unknown id reports not found, not a conflict.
	found, blockers, err = r.UpdateIfFree(ctx, &models.Booking{
		ID: 9999, UserID: u.ID, Date: "2026-09-04", Start: "15:00", End: "16:00", Attendees: 1, Purpose: "ghost",
	})
	if err != nil || found || len(blockers) != 0 {
		t.Fatalf("missing id: found=%v blockers=%d err=%v", found, len(blockers), err)
	}
}

func TestBookingRepository_ListFrom(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "booking_list_from")
	u1 := testutil.InsertUser(t, d, "202411005", "Ana Souza", "", models.RoleUser)
	u2 := testutil.InsertUser(t, d, "202411006", "Tom Becker", "", models.RoleUser)
	r := NewBookingRepository(d)
	ctx := context.Background()

	seedBooking(t, r, u1.ID, "2026-09-09", "10:00", "11:00")
	seedBooking(t, r, u1.ID, "2026-09-10", "14:00", "15:00")
	seedBooking(t, r, u1.ID, "2026-09-10", "08:00", "09:00")
	seedBooking(t, r, u2.ID, "2026-09-10", "12:00", "13:00")
	seedBooking(t, r, u1.ID, "2026-09-08", "09:00", "10:00")

	got, err := r.ListFrom(ctx, "2026-09-09", u1.ID)
	if err != nil {
		t.Fatalf("ListFrom: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d bookings, want 3", len(got))
	}
	// Newest date first, then ascending start time.
	if got[0].Date != "2026-09-10" || got[0].Start != "08:00" {
		t.Errorf("got[0] = %s %s", got[0].Date, got[0].Start)
	}
	if got[1].Date != "2026-09-10" || got[1].Start != "14:00" {
		t.Errorf("got[1] = %s %s", got[1].Date, got[1].Start)
	}
	if got[2].Date != "2026-09-09" {
		t.Errorf("got[2] = %s %s", got[2].Date, got[2].Start)
	}

	// ownerID zero lists everyone.
	got, err = r.ListFrom(ctx, "2026-09-09", 0)
	if err != nil || len(got) != 4 {
		t.Fatalf("all owners: got %d err=%v", len(got), err)
	}
}

// The SQL overlap predicate (overlapWhere) and the in-memory one
// (booking.Overlaps) must classify every interval identically.
func TestBookingRepository_OverlapMatchesPredicate(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "booking_predicate")
	u := testutil.InsertUser(t, d, "202411009", "Ida Berg", "", models.RoleUser)
	r := NewBookingRepository(d)
	ctx := context.Background()

	const seededStart, seededEnd = "09:00", "10:00"
	seedBooking(t, r, u.ID, "2026-09-06", seededStart, seededEnd)
	sStart, err := booking.ParseTimeOfDay(seededStart)
	if err != nil {
		t.Fatal(err)
	}
	sEnd, err := booking.ParseTimeOfDay(seededEnd)
	if err != nil {
		t.Fatal(err)
	}

	// Sweep half-hour intervals of varying lengths across the seeded slot.
	marks := []string{"07:00", "08:00", "08:30", "09:00", "09:15", "09:30", "09:45", "10:00", "10:30", "11:00", "12:00"}
	for i, start := range marks {
		for _, end := range marks[i+1:] {
			qStart, err := booking.ParseTimeOfDay(start)
			if err != nil {
				t.Fatal(err)
			}
			qEnd, err := booking.ParseTimeOfDay(end)
			if err != nil {
				t.Fatal(err)
			}
			want := booking.Overlaps(qStart, qEnd, sStart, sEnd)

			rows, err := r.FindOverlapping(ctx, "2026-09-06", start, end, 0)
			if err != nil {
				t.Fatalf("FindOverlapping [%s,%s): %v", start, end, err)
			}
			if got := len(rows) > 0; got != want {
				t.Errorf("[%s,%s): sql=%v in-memory=%v", start, end, got, want)
			}
		}
	}
}

func TestBookingRepository_InsertIfFree_ConcurrentWriters(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "booking_race")
	u := testutil.InsertUser(t, d, "202411008", "Noa Levi", "", models.RoleUser)
	r := NewBookingRepository(d)

	type result struct {
		id       int64
		blockers int
		err      error
	}
	const writers = 8
	results := make(chan result, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, blockers, err := r.InsertIfFree(context.Background(), &models.Booking{
				UserID: u.ID, Date: "2026-09-05", Start: "09:00", End: "10:00",
				Attendees: 2, Purpose: "race",
			})
			results <- result{id: id, blockers: len(blockers), err: err}
		}()
	}
	wg.Wait()
	close(results)

	winners := 0
	for res := range results {
		if res.err != nil {
			t.Fatalf("concurrent insert: %v", res.err)
		}
		if res.id != 0 {
			winners++
			continue
		}
		if res.blockers == 0 {
			t.Error("loser reported neither an id nor blockers")
		}
	}
	if winners != 1 {
		t.Errorf("winners = %d, want exactly 1", winners)
	}

	rows, err := r.ListByDate(context.Background(), "2026-09-05")
	if err != nil {
		t.Fatalf("ListByDate: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("%d rows landed for one slot", len(rows))
	}
}

func TestBookingRepository_UserCascade(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "booking_cascade")
	u := testutil.InsertUser(t, d, "202411007", "Yara Khalil", "", models.RoleUser)
	users := NewUserRepository(d)
	r := NewBookingRepository(d)
	ctx := context.Background()

	seedBooking(t, r, u.ID, "2026-09-11", "09:00", "10:00")
	seedBooking(t, r, u.ID, "2026-09-12", "09:00", "10:00")

	found, err := users.Delete(ctx, u.ID)
	if err != nil || !found {
		t.Fatalf("delete user: found=%v err=%v", found, err)
	}

	rows, err := r.ListFrom(ctx, "2026-09-11", 0)
	if err != nil {
		t.Fatalf("ListFrom: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected cascade to remove bookings, got %d", len(rows))
	}
}
