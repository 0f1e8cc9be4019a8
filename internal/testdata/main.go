package testdata

// Chart is a small but complete .chart file covering a tempo change, a
// time signature change, star power phrases, a sustain and a solo.
const Chart = `[Song]
{
  Name = "Test Song"
  Resolution = 192
}
[SyncTrack]
{
  0 = TS 4
  0 = B 120000
  1536 = B 150000
  3072 = TS 3
}
[Events]
{
  0 = E "section intro"
  1536 = E "section verse"
}
[ExpertSingle]
{
  0 = N 0 0
  0 = S 2 50
  192 = N 1 0
  384 = N 2 0
  384 = N 5 0
  576 = N 0 0
  576 = N 1 0
  768 = N 3 192
  768 = S 2 400
  960 = E solo
  1152 = N 2 0
  1344 = N 4 0
  1344 = E soloend
  1536 = N 0 0
  1536 = N 6 0
}
`
