package ml

// Metrics are binary classification scores against known labels
type Metrics struct {
	Accuracy     float64 `json:"accuracy"`
	Precision    float64 `json:"precision"`
	Recall       float64 `json:"recall"`
	F1           float64 `json:"f1"`
	PositiveRate float64 `json:"positive_rate"`
}

// Evaluate scores predicted labels against the true 0/1 targets
func Evaluate(yTrue []float64, yPred []int) Metrics {
	var m Metrics
	if len(yTrue) == 0 {
		return m
	}

	tp, fp, fn, correct, positives := 0, 0, 0, 0, 0
	for i, t := range yTrue {
		truth := int(t)
		if truth == 1 {
			positives++
		}
		if truth == yPred[i] {
			correct++
		}
		switch {
		case yPred[i] == 1 && truth == 1:
			tp++
		case yPred[i] == 1 && truth == 0:
			fp++
		case yPred[i] == 0 && truth == 1:
			fn++
		}
	}

	n := float64(len(yTrue))
	m.Accuracy = float64(correct) / n
	m.PositiveRate = float64(positives) / n
	if tp+fp > 0 {
		m.Precision = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		m.Recall = float64(tp) / float64(tp+fn)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	return m
}
